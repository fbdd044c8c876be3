package notifications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/enums"
	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
	"github.com/angelmondragon/gearmarket-backend/pkg/pagination"
	"go.uber.org/multierr"
)

const (
	// subscribeWindow is how many records a live subscription pushes.
	subscribeWindow = 100
	// subscribeFetchLimit is the unsorted over-fetch backing subscribeWindow.
	subscribeFetchLimit = subscribeWindow * pagination.OverFetchFactor
)

// Service is the notification record store used by triggers and the API.
type Service interface {
	Create(ctx context.Context, params CreateParams) (string, error)
	ListForUser(ctx context.Context, params ListParams) (*ListResult, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteAll(ctx context.Context, userID string) (int, error)
	Subscribe(ctx context.Context, userID string, handlers Handlers) (Unsubscribe, error)
}

// CreateParams describes a new record. Title, Message and Data are fixed once written.
type CreateParams struct {
	UserID   string
	Type     enums.NotificationType
	Title    string
	Message  string
	Data     map[string]any
	Link     string
	Priority enums.Priority
}

// ListParams configures a newest-first page of a user's records.
type ListParams struct {
	UserID string
	Limit  int
	Cursor string
}

// ListResult wraps returned records and the cursor for the next page.
type ListResult struct {
	Items  []Record `json:"items"`
	Cursor string   `json:"cursor"`
}

// Handlers receive subscription pushes. Any of them may be nil. Handlers must
// not call the Unsubscribe they were registered with.
type Handlers struct {
	OnRecords     func([]Record)
	OnUnreadCount func(int64)
	OnError       func(error)
}

// Unsubscribe stops both subscription loops; once it returns no handler runs.
type Unsubscribe func()

type service struct {
	repo    Repository
	watcher Watcher
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wires the record store dependencies.
func NewService(repo Repository, watcher Watcher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if watcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications watcher required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    repo,
		watcher: watcher,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, params CreateParams) (string, error) {
	userID := strings.TrimSpace(params.UserID)
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !params.Type.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid notification type").
			WithDetails(map[string]any{"type": params.Type})
	}
	priority := params.Priority
	if priority == "" {
		priority = enums.PriorityNormal
	}
	if !priority.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid notification priority").
			WithDetails(map[string]any{"priority": priority})
	}

	data := make(map[string]any, len(params.Data))
	for k, v := range params.Data {
		data[k] = v
	}
	record := &Record{
		UserID:   userID,
		Type:     params.Type,
		Title:    params.Title,
		Message:  params.Message,
		Data:     data,
		Priority: priority,
		Link:     params.Link,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	s.notify(ctx, userID)
	return record.ID, nil
}

func (s *service) ListForUser(ctx context.Context, params ListParams) (*ListResult, error) {
	if strings.TrimSpace(params.UserID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	var until *time.Time
	if cursor != nil {
		until = &cursor.CreatedAt
	}

	rows, err := s.repo.ListByUser(ctx, params.UserID, until, pagination.OverFetch(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	if cursor != nil {
		kept := rows[:0]
		for _, r := range rows {
			if olderThan(r, cursor.CreatedAt, cursor.ID) {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	sortNewestFirst(rows)

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return &ListResult{Items: rows, Cursor: next}, nil
}

func (s *service) CountUnread(ctx context.Context, userID string) (int64, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, id, userID string) error {
	record, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if record.IsRead {
		return nil
	}
	if err := s.repo.MarkRead(ctx, record.ID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	s.notify(ctx, userID)
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	unread, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unread notifications")
	}
	at := s.now()
	updated, err := fanOut(unread, func(r Record) error {
		return s.repo.MarkRead(ctx, r.ID, at)
	})
	if updated > 0 {
		s.notify(ctx, userID)
	}
	if err != nil {
		return updated, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id, userID string) error {
	record, err := s.owned(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	s.notify(ctx, userID)
	return nil
}

func (s *service) DeleteAll(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	records, err := s.repo.ListByUser(ctx, userID, nil, 0)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	deleted, err := fanOut(records, func(r Record) error {
		return s.repo.Delete(ctx, r.ID)
	})
	if deleted > 0 {
		s.notify(ctx, userID)
	}
	if err != nil {
		return deleted, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete all notifications")
	}
	return deleted, nil
}

func (s *service) Subscribe(ctx context.Context, userID string, handlers Handlers) (Unsubscribe, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	ctx, cancel := context.WithCancel(ctx)
	recordsFeed, err := s.watcher.Watch(ctx, userID, ScopeRecords)
	if err != nil {
		cancel()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "watch notifications")
	}
	unreadFeed, err := s.watcher.Watch(ctx, userID, ScopeUnread)
	if err != nil {
		_ = recordsFeed.Close()
		cancel()
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "watch unread notifications")
	}

	report := func(err error) {
		if handlers.OnError != nil && ctx.Err() == nil {
			handlers.OnError(err)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.follow(ctx, recordsFeed, report, func() error {
			records, err := s.latest(ctx, userID)
			if err != nil {
				return err
			}
			if handlers.OnRecords != nil && ctx.Err() == nil {
				handlers.OnRecords(records)
			}
			return nil
		})
	}()
	go func() {
		defer wg.Done()
		s.follow(ctx, unreadFeed, report, func() error {
			count, err := s.repo.CountUnread(ctx, userID)
			if err != nil {
				return err
			}
			if handlers.OnUnreadCount != nil && ctx.Err() == nil {
				handlers.OnUnreadCount(count)
			}
			return nil
		})
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

// follow pushes an initial snapshot, then one refresh per change signal until
// ctx ends or the feed closes.
func (s *service) follow(ctx context.Context, feed ChangeFeed, report func(error), refresh func() error) {
	defer func() { _ = feed.Close() }()

	run := func() {
		if err := refresh(); err != nil && ctx.Err() == nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "notification subscription refresh failed")
			report(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh subscription"))
		}
	}
	run()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-feed.Changes():
			if !ok {
				if err := feed.Err(); err != nil {
					report(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notification change feed"))
				}
				return
			}
			run()
		}
	}
}

// latest returns the newest records the same way ListForUser builds a page.
func (s *service) latest(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.repo.ListByUser(ctx, userID, nil, subscribeFetchLimit)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(rows)
	if len(rows) > subscribeWindow {
		rows = rows[:subscribeWindow]
	}
	return rows, nil
}

func (s *service) owned(ctx context.Context, id, userID string) (*Record, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id and user id required")
	}
	record, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification")
	}
	if record.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "notification belongs to another user")
	}
	return record, nil
}

func (s *service) notify(ctx context.Context, userID string) {
	if err := s.watcher.Notify(ctx, userID); err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"user_id": userID, "error": err.Error()})
		s.logg.Warn(logCtx, "notification change signal failed")
	}
}

// fanOut runs fn for every record concurrently. Writes that succeeded stay
// applied when others fail.
func fanOut(records []Record, fn func(Record) error) (int, error) {
	errs := make([]error, len(records))
	var wg sync.WaitGroup
	for i, r := range records {
		wg.Add(1)
		go func(i int, r Record) {
			defer wg.Done()
			errs[i] = fn(r)
		}(i, r)
	}
	wg.Wait()

	done := 0
	for _, err := range errs {
		if err == nil {
			done++
		}
	}
	return done, multierr.Combine(errs...)
}
