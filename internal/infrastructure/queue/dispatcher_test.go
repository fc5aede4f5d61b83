package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superapp/auth-service/internal/core/ports"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []ports.Notification
	err   error
	block chan struct{}
	// ctxErrs records the context state seen by each send.
	ctxErrs []error
}

func (r *recordingSender) Notify(ctx context.Context, n ports.Notification) error {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			r.mu.Lock()
			r.ctxErrs = append(r.ctxErrs, ctx.Err())
			r.mu.Unlock()
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}

func (r *recordingSender) snapshot() []ports.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.Notification(nil), r.sent...)
}

func TestDispatcher_DeliversInOrderPerRecipient(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(3, sender, zerolog.Nop())
	d.Start(context.Background())

	codes := []string{"111111", "222222", "333333"}
	for _, c := range codes {
		require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyPasswordReset, To: "a@x.com", Code: c}))
	}
	require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "b@x.com", Code: "999999"}))
	d.Close()

	var forA []string
	for _, n := range sender.snapshot() {
		if n.To == "a@x.com" {
			forA = append(forA, n.Code)
		}
	}
	assert.Equal(t, codes, forA)
	assert.Len(t, sender.snapshot(), 4)
}

func TestDispatcher_SenderErrorDoesNotStopWorker(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(context.Background())

	require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "1"}))
	require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "2"}))
	d.Close()

	assert.Len(t, sender.snapshot(), 2)
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(context.Background())

	n := ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "123456"}
	var dropped bool
	for i := 0; i < channelBuffer+2; i++ {
		if err := d.Notify(context.Background(), n); errors.Is(err, ErrQueueFull) {
			dropped = true
			break
		}
	}
	assert.True(t, dropped)

	close(sender.block)
	d.Close()
}

func TestDispatcher_RejectsAfterClose(t *testing.T) {
	d := NewDispatcher(2, &recordingSender{}, zerolog.Nop())
	d.Start(context.Background())
	d.Close()
	d.Close()

	err := d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingSender{}, zerolog.Nop())
	first := d.shardIndex("a@x.com")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, d.shardIndex("a@x.com"))
	}
	assert.GreaterOrEqual(t, first, 0)
	assert.Less(t, first, 8)
}

func TestDispatcher_DrainsQueueAfterStartContextCancelled(t *testing.T) {
	sender := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(ctx)

	for i := 0; i < 20; i++ {
		require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "123456"}))
	}
	cancel()
	d.Close()

	assert.Len(t, sender.snapshot(), 20)
	sender.mu.Lock()
	defer sender.mu.Unlock()
	for _, err := range sender.ctxErrs {
		assert.NoError(t, err)
	}
}

func TestDispatcher_CloseAbortsStuckSendAfterDeadline(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(1, sender, zerolog.Nop())
	d.Start(context.Background())

	require.NoError(t, d.Notify(context.Background(), ports.Notification{Kind: ports.NotifyVerification, To: "a@x.com", Code: "1"}))
	d.closeWithin(20 * time.Millisecond)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.ctxErrs, 1)
	assert.ErrorIs(t, sender.ctxErrs[0], context.Canceled)
}
