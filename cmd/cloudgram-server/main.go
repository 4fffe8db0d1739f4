package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dfryer1193/cloudgram/images/application"
	"github.com/dfryer1193/cloudgram/images/persistence"
	"github.com/dfryer1193/cloudgram/internal/config"
	"github.com/dfryer1193/cloudgram/internal/middleware"
	"github.com/dfryer1193/cloudgram/internal/rest"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	service, err := buildService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build image service")
	}

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))
	rest.NewApi(router, service)

	apiServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}
	opsServer := &http.Server{
		Addr:    cfg.OpsAddr,
		Handler: newOpsRouter(),
	}

	go func() {
		log.Info().Str("addr", cfg.OpsAddr).Msg("Ops server listening")
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Ops server failed")
		}
	}()

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("API server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("API server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("API server shutdown failed")
	}
	if err := opsServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Ops server shutdown failed")
	}
}

// buildService constructs the AWS clients and wires them into the
// coordination layer. An endpoint override (LocalStack) switches to
// static credentials and path-style bucket addressing.
func buildService(cfg *config.Config) (*application.ImageService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSEndpointURL != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("test", "test", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	})
	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		}
	})

	objects := persistence.NewS3ObjectStore(
		s3Client,
		s3.NewPresignClient(s3Client),
		cfg.S3Bucket,
		cfg.AWSRegion,
		cfg.AWSEndpointURL,
	)
	metadata := persistence.NewDynamoMetadataStore(dynamoClient, cfg.DynamoTable)

	return application.NewImageService(objects, metadata), nil
}

// newOpsRouter serves health probes and metrics off the public API.
func newOpsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
