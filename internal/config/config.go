package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultListenAddr = ":8001"
	DefaultOpsAddr    = ":9090"
	DefaultLogLevel   = "info"
)

// Config holds everything the service needs from the environment. All
// adapter-facing fields are required; a missing value is a startup
// error, never a runtime one.
type Config struct {
	// AWSEndpointURL overrides the AWS endpoint (LocalStack etc.).
	// Empty means the real AWS endpoints.
	AWSEndpointURL string

	AWSRegion   string
	S3Bucket    string
	DynamoTable string

	ListenAddr string
	OpsAddr    string
	LogLevel   string
}

// Load reads configuration from the environment. Variable names match
// the deployment convention: AWS_ENDPOINT_URL, AWS_REGION, S3_BUCKET,
// DYNAMO_TABLE, LISTEN_ADDR, OPS_ADDR, LOG_LEVEL.
func Load() (*Config, error) {
	v := viper.NewWithOptions(
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	_ = v.BindEnv("aws_endpoint_url")
	_ = v.BindEnv("aws_region")
	_ = v.BindEnv("s3_bucket")
	_ = v.BindEnv("dynamo_table")

	_ = v.BindEnv("listen_addr")
	v.SetDefault("listen_addr", DefaultListenAddr)

	_ = v.BindEnv("ops_addr")
	v.SetDefault("ops_addr", DefaultOpsAddr)

	_ = v.BindEnv("log_level")
	v.SetDefault("log_level", DefaultLogLevel)

	cfg := &Config{
		AWSEndpointURL: v.GetString("aws_endpoint_url"),
		AWSRegion:      v.GetString("aws_region"),
		S3Bucket:       v.GetString("s3_bucket"),
		DynamoTable:    v.GetString("dynamo_table"),
		ListenAddr:     v.GetString("listen_addr"),
		OpsAddr:        v.GetString("ops_addr"),
		LogLevel:       v.GetString("log_level"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string

	if c.AWSRegion == "" {
		missing = append(missing, "AWS_REGION")
	}
	if c.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if c.DynamoTable == "" {
		missing = append(missing, "DYNAMO_TABLE")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
