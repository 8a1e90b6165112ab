package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

var ErrMissingDestinationBucket = errors.New("destination bucket cannot be blank")
var ErrUnknownTriggerMode = errors.New("unknown trigger mode")
var ErrMissingInQueue = errors.New("inbound queue name cannot be blank in queue mode")
var ErrUnknownStorageBackend = errors.New("unknown storage backend")
var ErrMissingMinioEndpoint = errors.New("minio endpoint cannot be blank")
var ErrBadRetryCount = errors.New("textract retry count cannot be negative")
var ErrBadWorkerCount = errors.New("worker count must be at least 1")

const (
	triggerLambda = "lambda"
	triggerQueue  = "queue"

	storageS3    = "s3"
	storageMinio = "minio"
)

// ServiceConfig defines all of the service configuration parameters
type ServiceConfig struct {
	DestinationBucket string // where the textract responses are written

	TextractRegion     string
	TextractEndpoint   string
	TextractMaxRetries int // retry ceiling for throttled/transient textract errors

	TriggerMode string // lambda or queue
	InQueueName string // SQS queue carrying S3 notifications (queue mode)
	PollTimeOut int64  // long poll wait in seconds (queue mode)
	Workers     int    // concurrent handler workers (queue mode)

	StorageBackend string // s3 or minio
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioSecure    bool

	MetricsAddr string
	LogLevel    string
}

// LoadConfiguration will load the service configuration from env/cmdline
// and return a pointer to it. Any failures are fatal.
func LoadConfiguration() *ServiceConfig {

	// a local .env is optional
	_ = godotenv.Load()

	log.Printf("Loading configuration...")
	cfg := defineFlags(flag.CommandLine, os.Getenv)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration invalid: %s", err.Error())
	}

	cfg.dump()
	return cfg
}

// defineFlags binds the configuration to a flag set, taking defaults from the environment
func defineFlags(fs *flag.FlagSet, getenv func(string) string) *ServiceConfig {

	var cfg ServiceConfig
	fs.StringVar(&cfg.DestinationBucket, "destbucket", getenv("DESTINATION_TEXTRACTRESPONSE_BUCKET"), "Destination bucket for textract responses")
	fs.StringVar(&cfg.TextractRegion, "textractregion", envOrDefault(getenv, "TEXTRACT_REGION", "us-east-1"), "Textract region")
	fs.StringVar(&cfg.TextractEndpoint, "textractendpoint", envOrDefault(getenv, "TEXTRACT_ENDPOINT", "https://textract.us-east-1.amazonaws.com"), "Textract endpoint")
	fs.IntVar(&cfg.TextractMaxRetries, "maxretries", envInt(getenv, "TEXTRACT_MAX_RETRIES", 50), "Textract retry ceiling")
	fs.StringVar(&cfg.TriggerMode, "mode", envOrDefault(getenv, "TRIGGER_MODE", triggerLambda), "Trigger mode (lambda|queue)")
	fs.StringVar(&cfg.InQueueName, "inqueue", getenv("IN_QUEUE"), "Inbound notification queue name")
	fs.Int64Var(&cfg.PollTimeOut, "pollwait", int64(envInt(getenv, "POLL_TIMEOUT", 15)), "Poll wait time (in seconds)")
	fs.IntVar(&cfg.Workers, "workers", envInt(getenv, "WORKERS", 1), "Worker count (queue mode)")
	fs.StringVar(&cfg.StorageBackend, "storage", envOrDefault(getenv, "STORAGE_BACKEND", storageS3), "Storage backend (s3|minio)")
	fs.StringVar(&cfg.MinioEndpoint, "minioendpoint", getenv("MINIO_ENDPOINT"), "Minio endpoint (host:port)")
	fs.StringVar(&cfg.MinioAccessKey, "minioaccesskey", getenv("MINIO_ACCESS_KEY"), "Minio access key")
	fs.StringVar(&cfg.MinioSecretKey, "miniosecretkey", getenv("MINIO_SECRET_KEY"), "Minio secret key")
	fs.BoolVar(&cfg.MinioSecure, "miniosecure", envBool(getenv, "MINIO_SECURE", true), "Use TLS for minio")
	fs.StringVar(&cfg.MetricsAddr, "metrics", getenv("METRICS_ADDR"), "Metrics listen address (queue mode)")
	fs.StringVar(&cfg.LogLevel, "loglevel", envOrDefault(getenv, "LOG_LEVEL", "info"), "Log level")

	return &cfg
}

// Validate checks the configuration, the destination bucket is always required
func (cfg *ServiceConfig) Validate() error {

	if len(strings.TrimSpace(cfg.DestinationBucket)) == 0 {
		return ErrMissingDestinationBucket
	}

	if cfg.TextractMaxRetries < 0 {
		return ErrBadRetryCount
	}

	switch cfg.TriggerMode {
	case triggerLambda:
	case triggerQueue:
		if len(cfg.InQueueName) == 0 {
			return ErrMissingInQueue
		}
		if cfg.Workers < 1 {
			return ErrBadWorkerCount
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownTriggerMode, cfg.TriggerMode)
	}

	switch cfg.StorageBackend {
	case storageS3:
	case storageMinio:
		if len(cfg.MinioEndpoint) == 0 {
			return ErrMissingMinioEndpoint
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStorageBackend, cfg.StorageBackend)
	}

	return nil
}

func (cfg *ServiceConfig) dump() {

	log.Printf("[CONFIG] DestinationBucket    = [%s]", cfg.DestinationBucket)
	log.Printf("[CONFIG] TextractRegion       = [%s]", cfg.TextractRegion)
	log.Printf("[CONFIG] TextractEndpoint     = [%s]", cfg.TextractEndpoint)
	log.Printf("[CONFIG] TextractMaxRetries   = [%d]", cfg.TextractMaxRetries)
	log.Printf("[CONFIG] TriggerMode          = [%s]", cfg.TriggerMode)
	if cfg.TriggerMode == triggerQueue {
		log.Printf("[CONFIG] InQueueName          = [%s]", cfg.InQueueName)
		log.Printf("[CONFIG] PollTimeOut          = [%d]", cfg.PollTimeOut)
		log.Printf("[CONFIG] Workers              = [%d]", cfg.Workers)
		log.Printf("[CONFIG] MetricsAddr          = [%s]", cfg.MetricsAddr)
	}
	log.Printf("[CONFIG] StorageBackend       = [%s]", cfg.StorageBackend)
	if cfg.StorageBackend == storageMinio {
		log.Printf("[CONFIG] MinioEndpoint        = [%s]", cfg.MinioEndpoint)
		log.Printf("[CONFIG] MinioSecure          = [%t]", cfg.MinioSecure)
	}
	log.Printf("[CONFIG] LogLevel             = [%s]", cfg.LogLevel)
}

func envOrDefault(getenv func(string) string, name string, def string) string {
	if v := getenv(name); len(v) != 0 {
		return v
	}
	return def
}

func envInt(getenv func(string) string, name string, def int) int {
	v := getenv(name)
	if len(v) == 0 {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Warnf("%s is not a number (%s), using %d", name, v, def)
		return def
	}
	return i
}

func envBool(getenv func(string) string, name string, def bool) bool {
	v := getenv(name)
	if len(v) == 0 {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warnf("%s is not a boolean (%s), using %t", name, v, def)
		return def
	}
	return b
}

//
// end of file
//
