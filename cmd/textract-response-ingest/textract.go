package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/private/protocol/json/jsonutil"
	"github.com/aws/aws-sdk-go/service/textract"
	"github.com/aws/aws-sdk-go/service/textract/textractiface"
	log "github.com/sirupsen/logrus"
)

// Analyzer submits a PNG encoded document for analysis
type Analyzer interface {
	Analyze(ctx context.Context, png []byte) (*textract.AnalyzeDocumentOutput, error)
}

type textractAnalyzer struct {
	svc textractiface.TextractAPI
}

// newTextractAnalyzer creates the textract client. Throttling and transient failures are retried by the
// SDK up to the configured ceiling using its default backoff.
func newTextractAnalyzer(config ServiceConfig) (*textractAnalyzer, error) {

	awsConfig := aws.NewConfig().
		WithRegion(config.TextractRegion).
		WithMaxRetries(config.TextractMaxRetries)
	if len(config.TextractEndpoint) != 0 {
		awsConfig = awsConfig.WithEndpoint(config.TextractEndpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, err
	}

	return &textractAnalyzer{svc: textract.New(sess)}, nil
}

func (t *textractAnalyzer) Analyze(ctx context.Context, png []byte) (*textract.AnalyzeDocumentOutput, error) {

	start := time.Now()
	log.Infof("Submitting document to textract (%d bytes)", len(png))

	out, err := t.svc.AnalyzeDocumentWithContext(ctx, &textract.AnalyzeDocumentInput{
		Document:     &textract.Document{Bytes: png},
		FeatureTypes: aws.StringSlice([]string{textract.FeatureTypeTables}),
	})
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	log.Infof("Textract analyzed document successfully in %0.2f seconds (%d blocks)", duration.Seconds(), len(out.Blocks))
	return out, nil
}

// marshalResponse renders the analysis result in the service's own JSON wire shape, absent fields are omitted
func marshalResponse(out *textract.AnalyzeDocumentOutput) ([]byte, error) {
	return jsonutil.BuildJSON(out)
}

//
// end of file
//
