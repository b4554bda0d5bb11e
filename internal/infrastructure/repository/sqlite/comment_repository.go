package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS comments (
	id             TEXT PRIMARY KEY,
	market_id      INTEGER NOT NULL,
	wallet_address TEXT NOT NULL,
	content        TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_market_created ON comments (market_id, created_at DESC);
`

// CommentRepository stores comments in a single SQLite file.
type CommentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ port.CommentRepository = (*CommentRepository)(nil)

// Open creates the database file and schema if needed. ":memory:" is accepted.
func Open(ctx context.Context, path string, logger *zap.Logger) (*CommentRepository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger = logger.Named("CommentRepository")
	logger.Info("Comment store ready", zap.String("path", path))
	return &CommentRepository{db: db, logger: logger}, nil
}

func (r *CommentRepository) Close() error {
	return r.db.Close()
}

func (r *CommentRepository) Create(ctx context.Context, c entity.Comment) (entity.Comment, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, market_id, wallet_address, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.MarketID, c.WalletAddress, c.Content, c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano(),
	)
	if err != nil {
		r.logger.Error("Error creating comment", zap.Int64("marketId", c.MarketID), zap.Error(err))
		return entity.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// ListByMarket returns the market's comments, newest first.
func (r *CommentRepository) ListByMarket(ctx context.Context, marketID int64) ([]entity.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, market_id, wallet_address, content, created_at, updated_at
		 FROM comments WHERE market_id = ? ORDER BY created_at DESC, rowid DESC`,
		marketID,
	)
	if err != nil {
		r.logger.Error("Error fetching comments", zap.Int64("marketId", marketID), zap.Error(err))
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]entity.Comment, 0)
	for rows.Next() {
		var (
			c                entity.Comment
			created, updated int64
		)
		if err := rows.Scan(&c.ID, &c.MarketID, &c.WalletAddress, &c.Content, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = time.Unix(0, created).UTC()
		c.UpdatedAt = time.Unix(0, updated).UTC()
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}
