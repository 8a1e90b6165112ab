package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// minioStore reads and writes objects on an S3 compatible minio endpoint
type minioStore struct {
	client *minio.Client
}

func newMinioStore(config ServiceConfig) (*minioStore, error) {

	client, err := minio.New(config.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.MinioAccessKey, config.MinioSecretKey, ""),
		Secure: config.MinioSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return &minioStore{client: client}, nil
}

func (s *minioStore) GetObject(ctx context.Context, bucket string, key string) (*SourceObject, error) {

	start := time.Now()
	sourcename := fmt.Sprintf("minio://%s/%s", bucket, key)
	log.Infof("Fetching %s", sourcename)

	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// the object is opened lazily, stat surfaces missing objects
	info, err := obj.Stat()
	if err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrObjectNotFound, sourcename, code)
		}
		return nil, err
	}

	body, err := io.ReadAll(obj)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)
	log.Infof("Fetch of %s complete in %0.2f seconds (%d bytes)", sourcename, duration.Seconds(), len(body))

	metadata := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		metadata[k] = v
	}

	return &SourceObject{
		Body:        body,
		ContentType: info.ContentType,
		Metadata:    metadata,
	}, nil
}

func (s *minioStore) PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string, metadata map[string]string) error {

	start := time.Now()
	destname := fmt.Sprintf("minio://%s/%s", bucket, key)
	log.Infof("Uploading %s", destname)

	_, err := s.client.PutObject(ctx, bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
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
