package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// IsLambda reports whether the process runs inside AWS Lambda.
func IsLambda() bool {
	_, byName := os.LookupEnv("AWS_LAMBDA_FUNCTION_NAME")
	_, byAPI := os.LookupEnv("AWS_LAMBDA_RUNTIME_API")
	return byName || byAPI
}

// loadEnvFiles loads .env files in order of precedence. Variables that are
// already set in the process environment win over .env, the more specific
// files override it.
func loadEnvFiles() error {
	if IsLambda() {
		return nil
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env != "" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}
