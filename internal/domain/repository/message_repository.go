package repository

import (
	"context"

	"github.com/streamnest/streamnest/internal/domain/entity"
)

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	ListBetween(ctx context.Context, userA, userB string, limit int) ([]entity.Message, error)
}
