package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// secretsAPI - часть клиента Secrets Manager, нужная для загрузки секрета
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// loadAWSSecretsIntoEnv копирует пары ключ/значение из JSON-секрета в окружение.
// Без SOCIALAUTH_AWS_SECRET_ID ничего не делает.
func loadAWSSecretsIntoEnv(ctx context.Context) error {
	secretID := os.Getenv(Prefix + "AWS_SECRET_ID")
	if secretID == "" {
		return nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if region := os.Getenv(Prefix + "AWS_REGION"); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load aws config: %w", err)
	}

	overwrite := strings.EqualFold(os.Getenv(Prefix+"AWS_SECRET_OVERWRITE"), "true")
	_, err = applySecret(ctx, secretsmanager.NewFromConfig(awsCfg), secretID, overwrite)
	return err
}

// applySecret returns the number of variables it set. Existing variables are
// kept unless overwrite is true.
func applySecret(ctx context.Context, client secretsAPI, secretID string, overwrite bool) (int, error) {
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch secret %s: %w", secretID, err)
	}

	var payload []byte
	switch {
	case out.SecretString != nil:
		payload = []byte(*out.SecretString)
	case len(out.SecretBinary) > 0:
		payload = out.SecretBinary
	default:
		return 0, fmt.Errorf("secret %s has no payload", secretID)
	}

	var kv map[string]any
	if err := json.Unmarshal(payload, &kv); err != nil {
		return 0, fmt.Errorf("secret %s is not a JSON object: %w", secretID, err)
	}

	applied := 0
	for key, val := range kv {
		if !overwrite && os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return applied, fmt.Errorf("failed to set %s from secret: %w", key, err)
		}
		applied++
	}
	return applied, nil
}
