package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("S3_BUCKET", "my-instagram-images")
	t.Setenv("DYNAMO_TABLE", "image-metadata")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ap-south-1", cfg.AWSRegion)
	assert.Equal(t, "my-instagram-images", cfg.S3Bucket)
	assert.Equal(t, "image-metadata", cfg.DynamoTable)

	// Optional values fall back to defaults.
	assert.Empty(t, cfg.AWSEndpointURL)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultOpsAddr, cfg.OpsAddr)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AWS_ENDPOINT_URL", "http://localhost:4566")
	t.Setenv("LISTEN_ADDR", ":9001")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4566", cfg.AWSEndpointURL)
	assert.Equal(t, ":9001", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name    string
		unset   string
		mention string
	}{
		{"no region", "AWS_REGION", "AWS_REGION"},
		{"no bucket", "S3_BUCKET", "S3_BUCKET"},
		{"no table", "DYNAMO_TABLE", "DYNAMO_TABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}
