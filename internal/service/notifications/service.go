package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type Service struct {
	store notification.Store
	log   *slog.Logger
	now   func() time.Time
	mu    sync.Mutex
}

func New(store notification.Store, log *slog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With("service", "notifications"),
		now:   time.Now,
	}
}

// Create stores n in the inbox. Empty ID and CreatedAt are filled in.
func (s *Service) Create(ctx context.Context, n notification.Notification,
) (notification.Notification, error) {
	if n.CustomerID == "" {
		return notification.Notification{}, serviceerrs.ErrMissingCustomerID
	}

	err := s.apply(ctx, func(doc *notification.Document) (bool, error) {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = s.now()
		}
		doc.Notifications = append(doc.Notifications, n)
		return true, nil
	})
	if err != nil {
		return notification.Notification{}, err
	}

	s.log.LogAttrs(ctx, slog.LevelDebug, "notification stored",
		slog.String("id", n.ID),
		slog.String("customer_id", n.CustomerID),
		slog.String("type", string(n.Type)))
	return n, nil
}

// List returns the customer's notifications newest first. limit == 0 means all.
func (s *Service) List(ctx context.Context,
	customerID string, unreadOnly bool, limit int,
) ([]notification.Notification, error) {
	if customerID == "" {
		return nil, serviceerrs.ErrMissingCustomerID
	}
	if limit < 0 {
		return nil, serviceerrs.ErrInvalidLimit
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	result := make([]notification.Notification, 0)
	for i := len(doc.Notifications) - 1; i >= 0; i-- {
		n := doc.Notifications[i]
		if n.CustomerID != customerID || (unreadOnly && n.Read) {
			continue
		}
		result = append(result, n)
	}
	slices.SortStableFunc(result, func(a, b notification.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Service) MarkRead(ctx context.Context, customerID, id string) error {
	if customerID == "" {
		return serviceerrs.ErrMissingCustomerID
	}

	return s.apply(ctx, func(doc *notification.Document) (bool, error) {
		for i := range doc.Notifications {
			n := &doc.Notifications[i]
			if n.ID != id || n.CustomerID != customerID {
				continue
			}
			if n.Read {
				return false, nil
			}
			n.Read = true
			return true, nil
		}
		return false, fmt.Errorf("notification %s: %w", id, serviceerrs.ErrNotFound)
	})
}

// MarkAllRead returns how many notifications changed state.
func (s *Service) MarkAllRead(ctx context.Context, customerID string) (int, error) {
	if customerID == "" {
		return 0, serviceerrs.ErrMissingCustomerID
	}

	var count int
	err := s.apply(ctx, func(doc *notification.Document) (bool, error) {
		count = 0
		for i := range doc.Notifications {
			n := &doc.Notifications[i]
			if n.CustomerID == customerID && !n.Read {
				n.Read = true
				count++
			}
		}
		return count > 0, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Service) apply(ctx context.Context,
	mutate func(doc *notification.Document) (changed bool, err error),
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 1; ; attempt++ {
		doc, err := s.store.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load notifications: %w", err)
		}

		changed, err := mutate(doc)
		if err != nil || !changed {
			return err
		}

		err = s.store.Save(ctx, doc)
		if err == nil {
			return nil
		}
		if !errors.Is(err, serviceerrs.ErrVersionConflict) ||
			attempt >= model.DefaultConflictAttempts {
			return fmt.Errorf("failed to save notifications: %w", err)
		}
		s.log.LogAttrs(ctx, slog.LevelWarn, "notifications changed concurrently, retrying",
			slog.Int("attempt", attempt),
			slog.Any(model.KeyLoggerError, err))
	}
}
