package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkarayel/loan-ledger/internal/domain"
)

// previewCache keeps loan previews in redis. Cache failures are logged and
// swallowed: the preview is always recomputable from the loan row.
type previewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func newPreviewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *previewCache {
	return &previewCache{client: client, ttl: ttl, logger: logger}
}

func previewKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:preview:%s", loanID)
}

func (c *previewCache) Get(ctx context.Context, loanID uuid.UUID) *domain.LoanPreview {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, previewKey(loanID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("preview cache read failed", zap.String("loan_id", loanID.String()), zap.Error(err))
		}
		return nil
	}

	var preview domain.LoanPreview
	if err := json.Unmarshal(raw, &preview); err != nil {
		c.logger.Warn("preview cache decode failed", zap.String("loan_id", loanID.String()), zap.Error(err))
		return nil
	}

	return &preview
}

func (c *previewCache) Set(ctx context.Context, preview *domain.LoanPreview) {
	if c == nil || c.client == nil {
		return
	}

	raw, err := json.Marshal(preview)
	if err != nil {
		c.logger.Warn("preview cache encode failed", zap.String("loan_id", preview.LoanID.String()), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, previewKey(preview.LoanID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("preview cache write failed", zap.String("loan_id", preview.LoanID.String()), zap.Error(err))
	}
}

func (c *previewCache) Invalidate(ctx context.Context, loanID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, previewKey(loanID)).Err(); err != nil {
		c.logger.Warn("preview cache invalidation failed", zap.String("loan_id", loanID.String()), zap.Error(err))
	}
}
