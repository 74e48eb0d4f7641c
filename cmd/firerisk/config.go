package main

import (
	"context"
	"fmt"
	"strings"

	"firerisk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	// a chat turn waits on two provider calls
	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 120
	}

	return c, nil
}

// validateServeConfig checks the settings only the HTTP server needs.
func validateServeConfig(c *types.Config) error {
	var missing []string

	if c.CognitoClientID == "" {
		missing = append(missing, "COGNITO_CLIENT_ID")
	}
	if c.CognitoIssuerURL == "" {
		missing = append(missing, "COGNITO_ISSUER_URL")
	}
	if c.CookieHashKey == "" {
		missing = append(missing, "COOKIE_HASH_KEY")
	}
	if c.CookieBlockKey == "" {
		missing = append(missing, "COOKIE_BLOCK_KEY")
	}

	switch c.StorageBackend {
	case storageS3:
		if c.S3BucketName == "" {
			missing = append(missing, "S3_BUCKET_NAME")
		}
	case storageMinio:
		if c.S3BucketName == "" {
			missing = append(missing, "S3_BUCKET_NAME")
		}
		if c.MinioEndpoint == "" {
			missing = append(missing, "MINIO_ENDPOINT")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", storageS3, storageMinio, c.StorageBackend)
	}

	switch c.LLMProvider {
	case providerOpenAI:
	case providerGemini:
		if c.LLMAPIKey == "" {
			missing = append(missing, "LLM_API_KEY")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", providerOpenAI, providerGemini, c.LLMProvider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("set %s", strings.Join(missing, ", "))
	}

	return nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
