package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"firerisk/internal/db"
	"firerisk/internal/intake"
	"firerisk/internal/llm"
	"firerisk/internal/server"
	"firerisk/internal/storage"
	"firerisk/internal/store"
	"firerisk/internal/upload"
	"firerisk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	storageS3    = "s3"
	storageMinio = "minio"

	providerOpenAI = "openai"
	providerGemini = "gemini"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if err := validateServeConfig(config); err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	cognitoClient := cognitoidentityprovider.NewFromConfig(awsConfig)

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	assessmentRepo := store.NewAssessmentRepository(pool)
	conversationRepo := store.NewConversationRepository(pool)
	findingRepo := store.NewFindingRepository(pool)
	imageRepo := store.NewImageRepository(pool)
	standardRepo := store.NewStandardRepository(pool)

	objectStore, err := newObjectStore(ctx, config, awsConfig)
	if err != nil {
		return err
	}

	llmClient, err := newLLMClient(ctx, config)
	if err != nil {
		return err
	}

	pipeline := intake.NewPipeline(logger, assessmentRepo, conversationRepo, findingRepo, standardRepo, llmClient)
	imageIntake := upload.NewIntake(logger, objectStore, imageRepo)

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	jwksURL := fmt.Sprintf("%s/.well-known/jwks.json", config.CognitoIssuerURL)

	err = jwkCache.Register(ctx, jwksURL)
	if err != nil {
		return fmt.Errorf("failed to register cognito jwks with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		cognitoClient,
		assessmentRepo,
		conversationRepo,
		findingRepo,
		imageRepo,
		pipeline,
		imageIntake,
		jwkCache,
		jwksURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":     config.ServerPort,
			"storage":  config.StorageBackend,
			"provider": config.LLMProvider,
		}).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func newObjectStore(ctx context.Context, config *types.Config, awsConfig aws.Config) (storage.ObjectStore, error) {
	switch config.StorageBackend {
	case storageMinio:
		return storage.NewMinioStore(
			ctx,
			config.MinioEndpoint,
			config.MinioAccessKey,
			config.MinioSecretKey,
			config.S3BucketName,
			config.MinioUseSSL,
			config.MinioPublicBaseURL,
		)
	default:
		return storage.NewS3Store(s3.NewFromConfig(awsConfig), config.S3BucketName, config.S3PublicBaseURL), nil
	}
}

func newLLMClient(ctx context.Context, config *types.Config) (llm.Client, error) {
	switch config.LLMProvider {
	case providerGemini:
		return llm.NewGeminiClient(ctx, config.LLMAPIKey, config.LLMModel)
	default:
		return llm.NewOpenAIClient(config.LLMBaseURL, config.LLMAPIKey, config.LLMModel), nil
	}
}
