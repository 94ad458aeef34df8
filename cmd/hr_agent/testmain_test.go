package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain runs before all tests and loads .env if available
func TestMain(m *testing.M) {
	// Try to load .env file - ignore error if it doesn't exist (CI environment)
	_ = godotenv.Load()

	// Commands must see the built-in defaults
	for _, key := range []string{"HR_PORT", "HR_VERBOSE", "LLM_PROVIDER", "PROMPTS_FILE", "WEIGHT_TOLERANCE", "BATCH_CONCURRENCY", "RESUME_S3_BUCKET", "RESUME_S3_ENDPOINT", "AMQP_URL"} {
		_ = os.Unsetenv(key)
	}

	os.Exit(m.Run())
}
