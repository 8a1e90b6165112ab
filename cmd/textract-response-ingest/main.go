package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

//
// main entry point
//
func main() {

	// Get config params and use them to init service context. Any issues are fatal
	cfg := LoadConfiguration()
	initLogging(cfg.LogLevel, cfg.TriggerMode == triggerLambda)

	log.Printf("===> %s service starting up (version: %s) <===", os.Args[0], Version())

	// the clients are created once and shared by every invocation
	store, err := newObjectStore(*cfg)
	fatalIfError(err)

	analyzer, err := newTextractAnalyzer(*cfg)
	fatalIfError(err)

	metrics := NewHandlerMetrics()
	handler, err := NewHandler(store, analyzer, cfg.DestinationBucket, metrics)
	fatalIfError(err)

	log.Printf("Setting the destination bucket: %s. Be sure the source bucket notifications are configured", cfg.DestinationBucket)

	if cfg.TriggerMode == triggerLambda {
		lambda.Start(handler.HandleEvent)
		return
	}

	// queue mode from here on
	aws, err := awssqs.NewAwsSqs(awssqs.AwsSqsConfig{})
	fatalIfError(err)

	queue, err := newSqsQueue(aws, cfg.InQueueName)
	fatalIfError(err)

	if len(cfg.MetricsAddr) != 0 {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			log.Printf("Serving metrics on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics listener failed (%s)", err.Error())
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runQueue(ctx, *cfg, queue, handler)
	if err != nil && !errors.Is(err, context.Canceled) {
		fatalIfError(err)
	}
	log.Printf("===> %s service shutting down <===", os.Args[0])
}

//
// end of file
//
