package port

import (
	"context"

	"prediction_market/internal/domain/entity"
)

// CommentRepository persists market comments.
type CommentRepository interface {
	Create(ctx context.Context, comment entity.Comment) (entity.Comment, error)
	ListByMarket(ctx context.Context, marketID int64) ([]entity.Comment, error)
}

// CommentService validates and stores comments.
type CommentService interface {
	List(ctx context.Context, marketID int64) ([]entity.Comment, error)
	Create(ctx context.Context, in entity.CommentInput) (entity.Comment, error)
}
