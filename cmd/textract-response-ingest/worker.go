package main

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uvalib/virgo4-sqs-sdk/awssqs"
)

// worker runs the handler for each inbound notification until the channel is closed
func worker(ctx context.Context, id int, queue notificationQueue, handler *Handler, messages <-chan awssqs.Message) {

	count := uint(0)
	for m := range messages {
		processInbound(ctx, queue, handler, m)
		count++

		if count%100 == 0 {
			log.Infof("Worker %d processed %d notifications", id, count)
		}
	}
	log.Infof("Worker %d terminating (%d notifications)", id, count)
}

// runQueue starts the workers and polls the inbound queue until the context is cancelled or the queue fails
func runQueue(ctx context.Context, config ServiceConfig, queue notificationQueue, handler *Handler) error {

	inbound := make(chan awssqs.Message, config.Workers)

	var wg sync.WaitGroup
	for w := 1; w <= config.Workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			worker(ctx, id, queue, handler, inbound)
		}(w)
	}

	err := pollInbound(ctx, config, queue, inbound)

	// let the workers finish what they have
	close(inbound)
	wg.Wait()
	return err
}

//
// end of file
//
