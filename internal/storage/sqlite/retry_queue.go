package sqlite

import (
	"context"
	"encoding/json"
	"time"

	"maragu.dev/goqite"
)

// RetryMessage records a provider whose discovery commit aborted after
// hitting the per-batch page-error budget (spec.md §4.10 step 6), so that
// fact survives independently of the cursor row itself.
type RetryMessage struct {
	Provider string `json:"provider"`
	CrawlID  string `json:"crawl_id"`
	Reason   string `json:"reason"`
}

const retryQueueName = "provider_discovery_retry"

// retryQueue lazily builds the goqite queue bound to this Store's
// connection, grounded on the teacher's internal/queue/manager.go wrapper
// around goqite.Queue (one named queue per concern, schema already set up
// in New via goqite.Setup).
func (s *Store) retryQueue() *goqite.Queue {
	if s.retryQ == nil {
		s.retryQ = goqite.New(goqite.NewOpts{DB: s.db, Name: retryQueueName})
	}
	return s.retryQ
}

// EnqueueRetry durably records that a provider needs another discovery
// attempt, independent of whatever the cursor's own status column says.
func (s *Store) EnqueueRetry(ctx context.Context, msg RetryMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.retryQueue().Send(ctx, goqite.Message{Body: data})
}

// ReceiveRetry pulls the oldest pending retry message, if any. Returns a
// nil message (and nil delete func) when the queue is empty. The caller
// must invoke the delete function once it has acted on the message.
func (s *Store) ReceiveRetry(ctx context.Context) (*RetryMessage, func() error, error) {
	gm, err := s.retryQueue().Receive(ctx)
	if err != nil {
		return nil, nil, err
	}
	if gm == nil {
		return nil, nil, nil
	}

	var msg RetryMessage
	if err := json.Unmarshal(gm.Body, &msg); err != nil {
		return nil, nil, err
	}

	id := gm.ID
	deleteFn := func() error {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.retryQueue().Delete(dctx, id)
	}
	return &msg, deleteFn, nil
}
