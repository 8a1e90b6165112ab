package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// provenance keys added to the metadata of every stored response
const (
	metadataSourceKey    = "SOURCE_IMAGE_KEY"
	metadataSourceBucket = "SOURCE_IMAGE_BUCKET"
)

const responseSuffix = ".json"
const responseContentType = "application/json"

// Handler runs the fetch, analyze and store sequence for one notification. It holds only
// collaborator handles so one instance serves any number of concurrent invocations.
type Handler struct {
	store             ObjectStore
	analyzer          Analyzer
	destinationBucket string
	metrics           *HandlerMetrics
}

// Result describes the object written for a notification
type Result struct {
	SourceBucket      string
	SourceKey         string
	DestinationBucket string
	DestinationKey    string
}

func NewHandler(store ObjectStore, analyzer Analyzer, destinationBucket string, metrics *HandlerMetrics) (*Handler, error) {

	if len(strings.TrimSpace(destinationBucket)) == 0 {
		return nil, ErrMissingDestinationBucket
	}
	if metrics == nil {
		metrics = NewHandlerMetrics()
	}
	return &Handler{
		store:             store,
		analyzer:          analyzer,
		destinationBucket: destinationBucket,
		metrics:           metrics,
	}, nil
}

// HandleEvent is the lambda entry point, errors are surfaced to the runtime as invocation failures
func (h *Handler) HandleEvent(ctx context.Context, events Events) error {
	_, err := h.Handle(ctx, events)
	return err
}

func (h *Handler) Handle(ctx context.Context, events Events) (*Result, error) {

	start := time.Now()
	h.metrics.StartInvocation()

	result, step, err := h.handle(ctx, events)

	h.metrics.FinishInvocation(time.Since(start), step)
	return result, err
}

// handle returns the name of the failing step along with the error
func (h *Handler) handle(ctx context.Context, events Events) (*Result, string, error) {

	logger := log.WithField("request_id", requestID(ctx))

	source, err := sourceLocation(events)
	if err != nil {
		logger.Errorf("Cannot process event (%s)", err.Error())
		return nil, stepParse, err
	}
	logger = logger.WithFields(log.Fields{"bucket": source.Bucket, "key": source.Key})
	logger.Infof("Processing new object")

	obj, err := h.store.GetObject(ctx, source.Bucket, source.Key)
	if err != nil {
		logger.Errorf("Fetch failed (%s)", err.Error())
		return nil, stepFetch, fmt.Errorf("fetching %s/%s: %w", source.Bucket, source.Key, err)
	}

	img, contentType, err := decodeImage(obj.Body)
	if err != nil {
		logger.Errorf("Decode failed (%s)", err.Error())
		return nil, stepDecode, fmt.Errorf("decoding %s/%s: %w", source.Bucket, source.Key, err)
	}
	logger.Infof("Decoded %s image (%dx%d)", contentType, img.Bounds().Dx(), img.Bounds().Dy())

	metadata := enrichMetadata(obj.Metadata, source)

	png, err := encodePNG(img)
	if err != nil {
		logger.Errorf("PNG encode failed (%s)", err.Error())
		return nil, stepDecode, fmt.Errorf("encoding %s/%s: %w", source.Bucket, source.Key, err)
	}

	response, err := h.analyzer.Analyze(ctx, png)
	if err != nil {
		logger.Errorf("Analysis failed (%s)", err.Error())
		return nil, stepAnalyze, fmt.Errorf("analyzing %s/%s: %w", source.Bucket, source.Key, err)
	}

	body, err := marshalResponse(response)
	if err != nil {
		logger.Errorf("Response serialization failed (%s)", err.Error())
		return nil, stepStore, fmt.Errorf("serializing response for %s/%s: %w", source.Bucket, source.Key, err)
	}

	destKey := destinationKey(source.Key)
	logger.Infof("Saving textract response to bucket: %s, key: %s", h.destinationBucket, destKey)

	err = h.store.PutObject(ctx, h.destinationBucket, destKey, body, responseContentType, metadata)
	if err != nil {
		logger.Errorf("Store failed (%s)", err.Error())
		return nil, stepStore, fmt.Errorf("storing %s/%s: %w", h.destinationBucket, destKey, err)
	}

	return &Result{
		SourceBucket:      source.Bucket,
		SourceKey:         source.Key,
		DestinationBucket: h.destinationBucket,
		DestinationKey:    destKey,
	}, "", nil
}

// enrichMetadata returns a copy of the source metadata with the provenance keys set. Existing values
// under those keys are overwritten.
func enrichMetadata(metadata map[string]string, source SourceLocation) map[string]string {

	enriched := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		enriched[k] = v
	}
	enriched[metadataSourceKey] = source.Key
	enriched[metadataSourceBucket] = source.Bucket
	return enriched
}

// destinationKey drops the last dot delimited segment of the key and appends the response suffix.
// The remaining segments are joined without a separator, so "report.page1.png" becomes "reportpage1.json",
// and a key with no dot at all becomes just ".json".
func destinationKey(key string) string {

	segments := strings.Split(key, ".")
	return strings.Join(segments[:len(segments)-1], "") + responseSuffix
}

// requestID is the lambda request id when running under lambda, otherwise a new uuid
func requestID(ctx context.Context) string {

	if lc, ok := lambdacontext.FromContext(ctx); ok && len(lc.AwsRequestID) != 0 {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}

//
// end of file
//
