package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

var ErrMalformedEvent = errors.New("malformed S3 event")

// notificationQueue is the part of the SQS helper the poll loop needs
type notificationQueue interface {
	Get(wait time.Duration) ([]awssqs.Message, error)
	Delete(messages []awssqs.Message) error
}

// sqsQueue adapts the awssqs helper to a single queue
type sqsQueue struct {
	aws    awssqs.AWS_SQS
	handle awssqs.QueueHandle
}

func newSqsQueue(aws awssqs.AWS_SQS, queueName string) (*sqsQueue, error) {
	handle, err := aws.QueueHandle(queueName)
	if err != nil {
		return nil, err
	}
	return &sqsQueue{aws: aws, handle: handle}, nil
}

func (q *sqsQueue) Get(wait time.Duration) ([]awssqs.Message, error) {
	return q.aws.BatchMessageGet(q.handle, 1, wait)
}

func (q *sqsQueue) Delete(messages []awssqs.Message) error {

	opStatus, err := q.aws.BatchMessageDelete(q.handle, messages)

	// check the operation results
	for ix, op := range opStatus {
		if op == false {
			log.Errorf("message %d failed to delete", ix)
		}
	}
	return err
}

// pollInbound waits for S3 notifications on the inbound queue and hands them to the workers.
// It returns when the context is cancelled or the queue itself fails.
func pollInbound(ctx context.Context, config ServiceConfig, queue notificationQueue, inbound chan<- awssqs.Message) error {

	wait := time.Duration(config.PollTimeOut) * time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		messages, err := queue.Get(wait)
		if err != nil {
			return err
		}

		// did we get anything to process
		if len(messages) == 0 {
			log.Debugf("No notifications...")
			continue
		}

		for _, m := range messages {
			select {
			case inbound <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// processInbound runs one notification. Successful and unprocessable notifications are deleted, anything
// else stays on the queue so the redrive policy can deal with it
func processInbound(ctx context.Context, queue notificationQueue, handler *Handler, message awssqs.Message) {

	log.Infof("Received new notification")

	events, err := decodeS3Event(message)
	if err == nil && len(events.Records) == 0 {
		log.Infof("Not an interesting notification, ignoring it")
		deleteInbound(queue, message)
		return
	}

	if err == nil {
		_, err = handler.Handle(ctx, *events)
	}

	if err != nil {
		if errors.Is(err, ErrMalformedEvent) {
			log.Errorf("Unprocessable notification, removing it (%s)", err.Error())
			deleteInbound(queue, message)
			return
		}
		log.Errorf("Notification processing failed, leaving it for redelivery (%s)", err.Error())
		return
	}

	deleteInbound(queue, message)
}

func deleteInbound(queue notificationQueue, message awssqs.Message) {
	if err := queue.Delete([]awssqs.Message{message}); err != nil {
		log.Errorf("Failed to delete notification (%s)", err.Error())
	}
}

//
// turn a message received from the inbound queue into an S3 event
//
func decodeS3Event(message awssqs.Message) (*Events, error) {

	events := Events{}
	err := json.Unmarshal([]byte(message.Payload), &events)
	if err != nil {
		log.Errorf("json unmarshal: %s", err)
		return nil, fmt.Errorf("%w: %s", ErrMalformedEvent, err.Error())
	}
	return &events, nil
}

// sourceLocation extracts the bucket and key from the first record of the event. Notification keys are
// URL encoded ('+' for space, %XX escapes) so they are decoded here.
func sourceLocation(events Events) (SourceLocation, error) {

	if len(events.Records) == 0 {
		return SourceLocation{}, fmt.Errorf("%w: no records", ErrMalformedEvent)
	}

	record := events.Records[0].S3
	if len(record.Bucket.Name) == 0 {
		return SourceLocation{}, fmt.Errorf("%w: missing bucket name", ErrMalformedEvent)
	}
	if len(record.Object.Key) == 0 {
		return SourceLocation{}, fmt.Errorf("%w: missing object key", ErrMalformedEvent)
	}

	key, err := url.QueryUnescape(record.Object.Key)
	if err != nil {
		return SourceLocation{}, fmt.Errorf("%w: bad object key encoding (%s)", ErrMalformedEvent, err.Error())
	}

	return SourceLocation{Bucket: record.Bucket.Name, Key: key}, nil
}

//
// end of file
//
