package database

import (
	"context"

	"github.com/nandanugg/linewatch/module/core/domain"
)

type JournalRepository interface {
	Insert(ctx context.Context, entry *domain.JournalEntry) error
	List(ctx context.Context, query *domain.JournalQuery) ([]domain.JournalEntry, error)
}
