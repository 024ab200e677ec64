package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/parkeat/internal/catalog"
	"github.com/RoyceAzure/lab/parkeat/internal/constants"
	"github.com/RoyceAzure/lab/parkeat/internal/infra/kv"
	"github.com/RoyceAzure/lab/parkeat/internal/model"
	"github.com/RoyceAzure/lab/parkeat/internal/pkg/util"
	"github.com/rs/zerolog"
)

var (
	ErrNotificationNotExist = errors.New("notification is not exist")
)

type INotificationService interface {
	Restore(ctx context.Context) error
	AddNotification(ctx context.Context, n model.NewNotification) (*model.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error
	Notifications() []model.Notification
	UnreadCount() int
}

type NotificationService struct {
	mu            sync.Mutex
	store         kv.Store
	catalog       *catalog.Catalog
	logger        zerolog.Logger
	now           func() time.Time
	ids           *util.IDGenerator
	notifications []model.Notification
}

var _ INotificationService = (*NotificationService)(nil)

func NewNotificationService(store kv.Store, c *catalog.Catalog, logger zerolog.Logger) *NotificationService {
	s := &NotificationService{
		store:   store,
		catalog: c,
		logger:  logger.With().Str("service", "notification").Logger(),
		now:     time.Now,
	}
	s.ids = util.NewIDGenerator("notif", func() time.Time { return s.now() })
	return s
}

// Restore 沒有紀錄時使用內建通知
// 清空後會存成空陣列，不會再回到內建通知
func (s *NotificationService) Restore(ctx context.Context) error {
	var list []model.Notification
	found, err := restoreJSON(ctx, s.store, s.logger, constants.NotificationsKey, &list)
	if err != nil {
		return fmt.Errorf("restore notifications: %w", err)
	}
	if !found {
		list = s.catalog.SeedNotifications(s.now())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = list
	return nil
}

// AddNotification 新通知放在最前面
func (s *NotificationService) AddNotification(ctx context.Context, n model.NewNotification) (*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notif := model.Notification{
		ID:        s.ids.Next(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    false,
		CreatedAt: s.now(),
	}
	if n.Data != nil {
		data := *n.Data
		notif.Data = &data
	}

	next := make([]model.Notification, 0, len(s.notifications)+1)
	next = append(next, notif)
	next = append(next, s.notifications...)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	cp := notif
	return &cp, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotificationNotExist
	}
	if s.notifications[idx].IsRead {
		return nil
	}

	next := s.cloneLocked()
	next[idx].IsRead = true
	return s.commit(ctx, next)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	for i := range next {
		next[i].IsRead = true
	}
	return s.commit(ctx, next)
}

func (s *NotificationService) ClearNotifications(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, []model.Notification{})
}

func (s *NotificationService) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *NotificationService) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Data 為指標，複製時一併深拷貝
func (s *NotificationService) cloneLocked() []model.Notification {
	list := make([]model.Notification, len(s.notifications))
	for i, n := range s.notifications {
		list[i] = n
		if n.Data != nil {
			data := *n.Data
			list[i].Data = &data
		}
	}
	return list
}

func (s *NotificationService) commit(ctx context.Context, next []model.Notification) error {
	if err := kv.SetJSON(ctx, s.store, constants.NotificationsKey, next); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}
	s.notifications = next
	return nil
}
