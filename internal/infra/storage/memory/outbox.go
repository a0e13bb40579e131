package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "stayhub/internal/app/outbox"
	infraoutbox "stayhub/internal/infra/outbox"
)

// Outbox stages event records in memory. It implements the worker's
// claim store too, so the same publishing loop runs in both storage modes.
type Outbox struct {
	mu    sync.Mutex
	queue []*infraoutbox.EventDocument
}

func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, &infraoutbox.EventDocument{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       "NEW",
		NextAttempt: time.Now().UTC(),
	})
	return nil
}

// Flush is a no-op; a worker (when configured) drains the queue.
func (o *Outbox) Flush(ctx context.Context) error {
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range o.queue {
		if doc.State != "NEW" && doc.State != "FAILED" {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = "CLAIMED"
		doc.ClaimedBy = workerID
		doc.ClaimedAt = now
		copyDoc := *doc
		return &copyDoc, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, doc := range o.queue {
		if doc.ID == id {
			o.queue = append(o.queue[:i], o.queue[i+1:]...)
			return nil
		}
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, doc := range o.queue {
		if doc.ID == id {
			doc.State = "FAILED"
			doc.Attempts++
			doc.NextAttempt = next
			doc.LastError = errMsg
			return nil
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox       = (*Outbox)(nil)
	_ infraoutbox.ClaimStore = (*Outbox)(nil)
)
