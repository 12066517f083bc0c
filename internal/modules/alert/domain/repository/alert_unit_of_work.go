package repository

import "context"

type AlertUnitOfWork interface {
	Transaction(ctx context.Context, fn func(alertRepo AlertRepository, outboxRepo OutboxRepository) error) error
}
