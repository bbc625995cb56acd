package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
	"github.com/skulk0156/emsbackend/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo     notification.Repository
	userRepo user.Repository
	hub      *sse.Hub
	clk      clock.Clock
	config   Config

	queue  chan notification.CreateNotificationRequest
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService starts the fan-out engine with background workers
// draining the intent queue into batched inserts and live pushes.
func NewNotificationService(repo notification.Repository, userRepo user.Repository, hub *sse.Hub, clk clock.Clock, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:     repo,
		userRepo: userRepo,
		hub:      hub,
		clk:      clk,
		config:   cfg,
		queue:    make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the intent queue, persisting in batches and then pushing
// each stored record over the hub. Persistence always precedes delivery.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = s.toEntity(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("Notification worker: batch insert failed", "worker", id, "count", len(batch), "error", err)
		} else {
			for _, n := range notifications {
				s.deliver(n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver pushes a persisted record to any live channels of its receiver.
// Best-effort only; the record is already durable.
func (s *service) deliver(n *notification.Notification) {
	s.hub.Publish(n.ReceiverID, sse.Event{
		ReceiverID: n.ReceiverID,
		Event:      "notification",
		Data:       notification.ToResponse(n),
	})
}

func (s *service) toEntity(req notification.CreateNotificationRequest) *notification.Notification {
	category := req.Category
	if category == "" {
		category = notification.CategorySystem
	}
	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityLow
	}
	return &notification.Notification{
		ID:         uuid.New().String(),
		ReceiverID: req.ReceiverID,
		SenderID:   req.SenderID,
		Title:      req.Title,
		Message:    req.Message,
		Category:   category,
		Priority:   priority,
		Link:       req.Link,
		Metadata:   req.Metadata,
		IsRead:     false,
		CreatedAt:  s.clk.Now(),
	}
}

// NotifyOne implements notification.Service.
func (s *service) NotifyOne(ctx context.Context, req notification.CreateNotificationRequest) error {
	ok, err := s.userRepo.Exists(ctx, req.ReceiverID)
	if err != nil {
		return err
	}
	if !ok {
		return notification.ErrInvalidReceiver
	}

	return s.enqueue(ctx, req)
}

// NotifyMany implements notification.Service. Invalid receivers are dropped
// silently; each valid receiver gets its own independent record.
func (s *service) NotifyMany(ctx context.Context, receiverIDs []string, req notification.CreateNotificationRequest) error {
	valid, err := s.userRepo.FilterExisting(ctx, receiverIDs)
	if err != nil {
		return err
	}
	if len(valid) == 0 {
		return notification.ErrNoValidReceivers
	}

	for _, id := range valid {
		r := req
		r.ReceiverID = id
		if err := s.enqueue(ctx, r); err != nil {
			slog.Error("Failed to enqueue notification", "receiver_id", id, "error", err)
		}
	}
	return nil
}

// enqueue hands the intent to the workers, falling back to a synchronous
// insert when the queue is full so the record is never dropped. Once Stop
// has been called the queue send would succeed but nothing drains it, so
// late intents also take the synchronous path.
func (s *service) enqueue(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case <-s.stopCh:
		return s.insertNow(ctx, req)
	default:
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.insertNow(ctx, req)
	}
}

func (s *service) insertNow(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := s.toEntity(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.deliver(n)
	return nil
}

// List implements notification.Service.
func (s *service) List(ctx context.Context, receiverID string, filter notification.ListFilter) (notification.ListResponse, error) {
	filter.Normalize()

	notifications, total, err := s.repo.ListForReceiver(ctx, receiverID, filter)
	if err != nil {
		return notification.ListResponse{}, err
	}

	unread, err := s.repo.UnreadCount(ctx, receiverID)
	if err != nil {
		return notification.ListResponse{}, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return notification.ListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}, nil
}

// UnreadCount implements notification.Service.
func (s *service) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	return s.repo.UnreadCount(ctx, receiverID)
}

// MarkRead implements notification.Service.
func (s *service) MarkRead(ctx context.Context, receiverID, notificationID string) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, receiverID)
	if err != nil {
		return err
	}
	if !ok {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead implements notification.Service. Affecting zero records is
// not an error.
func (s *service) MarkAllRead(ctx context.Context, receiverID string) error {
	return s.repo.MarkAllRead(ctx, receiverID)
}

// Delete implements notification.Service.
func (s *service) Delete(ctx context.Context, receiverID, notificationID string) error {
	ok, err := s.repo.SoftDelete(ctx, notificationID, receiverID)
	if err != nil {
		return err
	}
	if !ok {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// Subscribe implements notification.Service.
func (s *service) Subscribe(ctx context.Context, receiverID string) (<-chan notification.NotificationResponse, func()) {
	ch, cleanup := s.hub.Subscribe(receiverID)

	out := make(chan notification.NotificationResponse, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- resp:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop implements notification.Service.
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("Notification service stopped")
}
