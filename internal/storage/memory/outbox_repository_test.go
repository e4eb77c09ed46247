package memory_test

import (
	"context"
	"testing"

	"github.com/vladislavdragonenkov/ims/internal/domain"
	"github.com/vladislavdragonenkov/ims/internal/storage/memory"
)

func TestOutboxRepository_EnqueueAssignsID(t *testing.T) {
	repo := memory.NewOutboxRepository()

	msg, err := repo.Enqueue(context.Background(), domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.placed",
		Payload:       []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated outbox id")
	}
}

func TestOutboxRepository_PullPendingAndMarkSent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	ctx := context.Background()

	msg, err := repo.Enqueue(ctx, domain.OutboxMessage{EventType: "order.placed"})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	pending, err := repo.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}

	if err := repo.MarkSent(ctx, msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, err = repo.PullPending(ctx, 10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages after MarkSent, got %d", len(pending))
	}
}

func TestOutboxRepository_Stats(t *testing.T) {
	repo := memory.NewOutboxRepository()
	ctx := context.Background()

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 0 {
		t.Fatalf("expected empty backlog, got %d", stats.PendingCount)
	}

	if _, err := repo.Enqueue(ctx, domain.OutboxMessage{EventType: "order.placed"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}

	stats, err = repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected 1 pending, got %d", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected OldestPendingAt to be set")
	}
}

func TestOutboxRepository_MarkMissing(t *testing.T) {
	repo := memory.NewOutboxRepository()

	if err := repo.MarkSent(context.Background(), "nope"); err != domain.ErrOutboxRecordMissing {
		t.Fatalf("expected ErrOutboxRecordMissing, got %v", err)
	}
	if err := repo.MarkFailed(context.Background(), "nope"); err != domain.ErrOutboxRecordMissing {
		t.Fatalf("expected ErrOutboxRecordMissing, got %v", err)
	}
}
