package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofregistry/pkg/domain"
	audit "proofregistry/pkg/platform/audit"
	"proofregistry/pkg/platform/audit/store/memory"
)

const submitter = domain.Principal("ST1TEST")

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Principal: submitter,
		Action:    string(audit.EventProofSubmitted),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), submitter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventProofSubmitted), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Principal: submitter,
			Action:    string(audit.EventProofUpdated),
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByPrincipal(context.Background(), submitter)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_DropsEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), audit.Event{
				Principal: submitter,
				Action:    string(audit.EventSubmissionRejected),
			})
		}()
	}
	wg.Wait()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Principal: submitter,
		Action:    string(audit.EventAuthoritySet),
	}))
	after := time.Now()

	events, err := pub.List(context.Background(), submitter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Principal: submitter,
		Action:    string(audit.EventAuthoritySet),
		Timestamp: customTime,
	}))

	events, err := pub.List(context.Background(), submitter)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	pub.Close()
	pub.Close()
}
