package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewhub/review-api/internal/core/domain"
)

type recordingAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *recordingAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *recordingAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestAuditDispatcher_PersistsEvents(t *testing.T) {
	repo := &recordingAuditRepo{}
	d := NewAuditDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{Kind: domain.AuditSignup, Username: "alice"})
	d.Record(domain.AuditEvent{Kind: domain.AuditTokenIssued, Username: "bob"})

	waitFor(t, func() bool { return len(repo.snapshot()) == 2 })

	for _, e := range repo.snapshot() {
		if e.ID == "" {
			t.Fatalf("event persisted without an id: %+v", e)
		}
	}
}

func TestAuditDispatcher_SameUserKeepsOrder(t *testing.T) {
	repo := &recordingAuditRepo{}
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	kinds := []domain.AuditKind{
		domain.AuditSignup,
		domain.AuditCodeRotated,
		domain.AuditTokenRejected,
		domain.AuditTokenIssued,
	}
	for _, k := range kinds {
		d.Record(domain.AuditEvent{Kind: k, Username: "alice"})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == len(kinds) })

	got := repo.snapshot()
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Fatalf("events for one user out of order: got %v at %d, want %v", got[i].Kind, i, k)
		}
	}
}

func TestAuditDispatcher_ShardIsStable(t *testing.T) {
	d := NewAuditDispatcher(4, &recordingAuditRepo{}, zerolog.Nop())
	first := d.shardIndex("alice")
	for i := 0; i < 10; i++ {
		if d.shardIndex("alice") != first {
			t.Fatalf("shard index not deterministic")
		}
	}
}
