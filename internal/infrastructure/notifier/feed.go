package notifier

import (
	"sort"
	"time"

	"prediction_market/internal/app/port"
	"prediction_market/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Feed keeps recent toasts in memory so API clients can poll them. Entries
// expire after the configured TTL.
type Feed struct {
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

var _ port.Notifier = (*Feed)(nil)

// NewFeed creates a Feed whose entries live for ttl.
func NewFeed(ttl time.Duration, logger *zap.Logger) *Feed {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Feed{
		cache:  cache.New(ttl, 2*ttl),
		logger: logger.Named("Notifications"),
		now:    time.Now,
	}
}

func (f *Feed) push(level entity.NotificationLevel, msg string) {
	n := entity.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: f.now().UTC(),
	}
	f.cache.SetDefault(n.ID, n)
	f.logger.Debug("Notification", zap.String("level", string(level)), zap.String("message", msg))
}

func (f *Feed) Info(msg string)    { f.push(entity.NotifyInfo, msg) }
func (f *Feed) Success(msg string) { f.push(entity.NotifySuccess, msg) }
func (f *Feed) Error(msg string)   { f.push(entity.NotifyError, msg) }
func (f *Feed) Loading(msg string) { f.push(entity.NotifyLoading, msg) }

// List returns the live notifications, oldest first.
func (f *Feed) List() []entity.Notification {
	items := f.cache.Items()
	out := make([]entity.Notification, 0, len(items))
	for _, item := range items {
		if n, ok := item.Object.(entity.Notification); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Dismiss removes a notification.
func (f *Feed) Dismiss(id string) {
	f.cache.Delete(id)
}
