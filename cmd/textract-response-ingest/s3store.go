package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	log "github.com/sirupsen/logrus"
)

// s3Store reads and writes objects using the AWS S3 API
type s3Store struct {
	svc      s3iface.S3API
	uploader *s3manager.Uploader
}

func newS3Store() (*s3Store, error) {

	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}

	svc := s3.New(sess)
	return &s3Store{
		svc:      svc,
		uploader: s3manager.NewUploaderWithClient(svc),
	}, nil
}

func (s *s3Store) GetObject(ctx context.Context, bucket string, key string) (*SourceObject, error) {

	start := time.Now()
	sourcename := fmt.Sprintf("s3://%s/%s", bucket, key)
	log.Infof("Fetching %s", sourcename)

	out, err := s.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == s3.ErrCodeNoSuchBucket) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrObjectNotFound, sourcename, aerr.Code())
		}
		return nil, err
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	log.Infof("Fetch of %s complete in %0.2f seconds (%d bytes)", sourcename, duration.Seconds(), len(body))

	return &SourceObject{
		Body:        body,
		ContentType: aws.StringValue(out.ContentType),
		Metadata:    aws.StringValueMap(out.Metadata),
	}, nil
}

func (s *s3Store) PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string, metadata map[string]string) error {

	start := time.Now()
	destname := fmt.Sprintf("s3://%s/%s", bucket, key)
	log.Infof("Uploading %s", destname)

	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    aws.StringMap(metadata),
	})
	if err != nil {
		return err
	}

	duration := time.Since(start)
	log.Infof("Upload of %s complete in %0.2f seconds", destname, duration.Seconds())
	return nil
}

//
// end of file
//
