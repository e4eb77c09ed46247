package domain

import (
	"context"
	"time"
)

// StockAdjuster — единственный санкционированный путь списания стока.
// Workflow размещения заказа не проверяет остаток самостоятельно, а
// полагается на атомарный результат DecreaseStock.
type StockAdjuster interface {
	// DecreaseStock списывает qty единиц позиции itemID. Возвращает true,
	// если остатка хватило и ровно одно обновление было сохранено; false —
	// если позиции нет или остатка недостаточно (без побочных эффектов).
	DecreaseStock(ctx context.Context, itemID string, qty int32) (bool, error)
}

// OutboxMessage хранит данные события для последующей публикации.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxPublisher публикует события из transactional outbox.
// Реализация должна быть идемпотентной по ID сообщения.
type OutboxPublisher interface {
	Publish(event OutboxMessage) error
}
