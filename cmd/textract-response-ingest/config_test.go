package main

import (
	"errors"
	"flag"
	"testing"
)

func envFrom(values map[string]string) func(string) string {
	return func(name string) string {
		return values[name]
	}
}

func parseConfig(t *testing.T, env map[string]string, args ...string) *ServiceConfig {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := defineFlags(fs, envFrom(env))
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := parseConfig(t, map[string]string{"DESTINATION_TEXTRACTRESPONSE_BUCKET": "responses"})

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.DestinationBucket != "responses" {
		t.Fatalf("unexpected destination bucket %q", cfg.DestinationBucket)
	}
	if cfg.TextractMaxRetries != 50 {
		t.Fatalf("expected 50 retries, got %d", cfg.TextractMaxRetries)
	}
	if cfg.TextractRegion != "us-east-1" || cfg.TextractEndpoint != "https://textract.us-east-1.amazonaws.com" {
		t.Fatalf("unexpected textract location %s %s", cfg.TextractRegion, cfg.TextractEndpoint)
	}
	if cfg.TriggerMode != triggerLambda || cfg.StorageBackend != storageS3 {
		t.Fatalf("unexpected mode %s / backend %s", cfg.TriggerMode, cfg.StorageBackend)
	}
	if cfg.Workers != 1 || cfg.PollTimeOut != 15 {
		t.Fatalf("unexpected queue defaults %d workers, %d poll", cfg.Workers, cfg.PollTimeOut)
	}
}

func TestConfigMissingDestinationBucket(t *testing.T) {
	cfg := parseConfig(t, map[string]string{})
	if err := cfg.Validate(); !errors.Is(err, ErrMissingDestinationBucket) {
		t.Fatalf("expected missing destination bucket, got %v", err)
	}

	cfg = parseConfig(t, map[string]string{"DESTINATION_TEXTRACTRESPONSE_BUCKET": "  "})
	if err := cfg.Validate(); !errors.Is(err, ErrMissingDestinationBucket) {
		t.Fatalf("expected missing destination bucket for blank value, got %v", err)
	}
}

func TestConfigFlagOverridesEnvironment(t *testing.T) {
	cfg := parseConfig(t,
		map[string]string{"DESTINATION_TEXTRACTRESPONSE_BUCKET": "from-env", "TEXTRACT_MAX_RETRIES": "7"},
		"-destbucket", "from-flag")

	if cfg.DestinationBucket != "from-flag" {
		t.Fatalf("expected flag to win, got %q", cfg.DestinationBucket)
	}
	if cfg.TextractMaxRetries != 7 {
		t.Fatalf("expected retries from env, got %d", cfg.TextractMaxRetries)
	}
}

func TestConfigBadNumbersUseDefaults(t *testing.T) {
	cfg := parseConfig(t, map[string]string{
		"DESTINATION_TEXTRACTRESPONSE_BUCKET": "responses",
		"TEXTRACT_MAX_RETRIES":                "lots",
		"MINIO_SECURE":                        "maybe",
	})
	if cfg.TextractMaxRetries != 50 {
		t.Fatalf("expected default retries, got %d", cfg.TextractMaxRetries)
	}
	if !cfg.MinioSecure {
		t.Fatalf("expected default minio secure")
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() ServiceConfig {
		return ServiceConfig{
			DestinationBucket: "responses",
			TriggerMode:       triggerLambda,
			StorageBackend:    storageS3,
			Workers:           1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*ServiceConfig)
		want   error
	}{
		{name: "valid", mutate: func(*ServiceConfig) {}},
		{name: "negative retries", mutate: func(c *ServiceConfig) { c.TextractMaxRetries = -1 }, want: ErrBadRetryCount},
		{name: "unknown mode", mutate: func(c *ServiceConfig) { c.TriggerMode = "cron" }, want: ErrUnknownTriggerMode},
		{name: "queue without name", mutate: func(c *ServiceConfig) { c.TriggerMode = triggerQueue }, want: ErrMissingInQueue},
		{name: "queue without workers", mutate: func(c *ServiceConfig) {
			c.TriggerMode = triggerQueue
			c.InQueueName = "inbound"
			c.Workers = 0
		}, want: ErrBadWorkerCount},
		{name: "queue", mutate: func(c *ServiceConfig) {
			c.TriggerMode = triggerQueue
			c.InQueueName = "inbound"
		}},
		{name: "unknown backend", mutate: func(c *ServiceConfig) { c.StorageBackend = "gcs" }, want: ErrUnknownStorageBackend},
		{name: "minio without endpoint", mutate: func(c *ServiceConfig) { c.StorageBackend = storageMinio }, want: ErrMissingMinioEndpoint},
		{name: "minio", mutate: func(c *ServiceConfig) {
			c.StorageBackend = storageMinio
			c.MinioEndpoint = "localhost:9000"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewObjectStore(t *testing.T) {
	store, err := newObjectStore(ServiceConfig{StorageBackend: storageMinio, MinioEndpoint: "localhost:9000"})
	if err != nil {
		t.Fatalf("newObjectStore(minio) error = %v", err)
	}
	if _, ok := store.(*minioStore); !ok {
		t.Fatalf("expected a minio store, got %T", store)
	}

	if _, err := newObjectStore(ServiceConfig{StorageBackend: "gcs"}); !errors.Is(err, ErrUnknownStorageBackend) {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}
