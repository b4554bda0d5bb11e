package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"
	"prediction_market/internal/pkg/metrics"

	"github.com/google/uuid"
)

// DefaultMaxCommentLength bounds comment content, counted in characters.
const DefaultMaxCommentLength = 1000

var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// CommentServiceImpl implements port.CommentService.
type CommentServiceImpl struct {
	repo   port.CommentRepository
	logger port.Logger
	maxLen int
	now    func() time.Time
	newID  func() string
}

// NewCommentService creates a new instance of CommentServiceImpl.
func NewCommentService(repo port.CommentRepository, l port.Logger, maxLen int) *CommentServiceImpl {
	if maxLen <= 0 {
		maxLen = DefaultMaxCommentLength
	}
	return &CommentServiceImpl{
		repo:   repo,
		logger: l,
		maxLen: maxLen,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

var _ port.CommentService = (*CommentServiceImpl)(nil)

// List returns the comments of a market, newest first.
func (s *CommentServiceImpl) List(ctx context.Context, marketID int64) ([]entity.Comment, error) {
	comments, err := s.repo.ListByMarket(ctx, marketID)
	if err != nil {
		s.logger.Error("Error fetching comments", "marketId", marketID, "error", err)
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Create validates in and stores it with a lowercased address and trimmed
// content.
func (s *CommentServiceImpl) Create(ctx context.Context, in entity.CommentInput) (entity.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if in.MarketID == nil || in.WalletAddress == "" || content == "" {
		return entity.Comment{}, entity.ValidationError("Market ID, wallet address, and content are required")
	}
	if utf8.RuneCountInString(in.Content) > s.maxLen {
		return entity.Comment{}, entity.ValidationError(fmt.Sprintf("Content must be %d characters or less", s.maxLen))
	}
	if !walletAddressPattern.MatchString(in.WalletAddress) {
		return entity.Comment{}, entity.ValidationError("Invalid wallet address format")
	}

	now := s.now().UTC()
	comment := entity.Comment{
		ID:            s.newID(),
		MarketID:      *in.MarketID,
		WalletAddress: strings.ToLower(in.WalletAddress),
		Content:       content,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	stored, err := s.repo.Create(ctx, comment)
	if err != nil {
		s.logger.Error("Error creating comment", "marketId", comment.MarketID, "error", err)
		return entity.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	metrics.CommentsCreated.Inc()
	s.logger.Info("Comment created", "id", stored.ID, "marketId", stored.MarketID)
	return stored, nil
}
