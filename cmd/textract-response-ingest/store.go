package main

import (
	"context"
	"errors"
)

var ErrObjectNotFound = errors.New("object not found")

// SourceObject is an object read from storage along with its user metadata
type SourceObject struct {
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// ObjectStore is the storage collaborator used to read source images and write textract responses
type ObjectStore interface {
	// GetObject returns the body and user metadata of the object
	GetObject(ctx context.Context, bucket string, key string) (*SourceObject, error)

	// PutObject writes (or overwrites) the object with the supplied user metadata
	PutObject(ctx context.Context, bucket string, key string, body []byte, contentType string, metadata map[string]string) error
}

// newObjectStore creates the configured storage backend
func newObjectStore(config ServiceConfig) (ObjectStore, error) {

	switch config.StorageBackend {
	case storageMinio:
		store, err := newMinioStore(config)
		if err != nil {
			return nil, err
		}
		return store, nil
	case storageS3, "":
		store, err := newS3Store()
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return nil, ErrUnknownStorageBackend
}

//
// end of file
//
