package notify

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

type stubFailureCounter struct {
	calls int
}

func (s *stubFailureCounter) RecordNotifyFailure() {
	s.calls++
}

// Port 1 refuses connections, so Publish fails fast.
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestPublisherCountsDroppedEvents(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	counter := &stubFailureCounter{}
	publisher := NewPublisher(client, "proxy.assignments", nil, counter)

	publisher.AssignmentCommitted(context.Background(), models.SubstitutionRecord{ID: "vac-1"})
	assert.Equal(t, 1, counter.calls)

	publisher.AssignmentCommitted(context.Background(), models.SubstitutionRecord{ID: "vac-2"})
	assert.Equal(t, 2, counter.calls)
}

func TestPublisherToleratesNilMetrics(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	publisher := NewPublisher(client, "", nil, nil)
	publisher.AssignmentCommitted(context.Background(), models.SubstitutionRecord{ID: "vac-1"})
}
