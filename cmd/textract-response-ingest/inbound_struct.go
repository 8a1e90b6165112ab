package main

// this describes the structure of the event received from S3, either directly
// as a lambda payload or as the body of an SQS message

type Events struct {
	Records []S3EventRecord `json:"Records"`
}

type S3EventRecord struct {
	EventSource string   `json:"eventSource,omitempty"`
	EventName   string   `json:"eventName,omitempty"`
	AwsRegion   string   `json:"awsRegion,omitempty"`
	EventTime   string   `json:"eventTime,omitempty"`
	S3          S3Record `json:"s3"`
}

type S3Record struct {
	Bucket BucketRecord `json:"bucket"`
	Object ObjectRecord `json:"object"`
}

type BucketRecord struct {
	Name string `json:"name"`
	Arn  string `json:"arn,omitempty"`
}

type ObjectRecord struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
	ETag string `json:"eTag,omitempty"`
}

// SourceLocation is the bucket and decoded key of the object a notification refers to
type SourceLocation struct {
	Bucket string
	Key    string
}

//
// end of file
//
