package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-service-dispatch/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	defaultActivityPerPage = 25
	maxActivityPerPage     = 200
)

// RetentionPolicy bounds the activity table. Zero values disable a rule.
type RetentionPolicy struct {
	TTL    time.Duration
	RowCap int
}

type ActivityStore struct {
	db   *bun.DB
	repo repository.Repository[*dispatchActivityRecord]
	now  func() time.Time
}

type ActivityStoreOption func(*ActivityStore)

// WithActivityClock sets the clock used for default timestamps and the
// retention TTL cutoff.
func WithActivityClock(now func() time.Time) ActivityStoreOption {
	return func(s *ActivityStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewActivityStore(db *bun.DB, opts ...ActivityStoreOption) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*dispatchActivityRecord](db, activityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	store := &ActivityStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// EnsureSchema creates the activity table and its lookup index when missing.
// Hosts running SQL migrations do not need it.
func (s *ActivityStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	if _, err := s.db.NewCreateTable().
		Model((*dispatchActivityRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create activity table: %w", err)
	}
	if _, err := s.db.NewCreateIndex().
		Model((*dispatchActivityRecord)(nil)).
		Index("idx_dispatch_activity_endpoint_created").
		Column("endpoint", "created_at").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create activity index: %w", err)
	}
	return nil
}

func (s *ActivityStore) Record(ctx context.Context, entry core.DispatchActivityEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		createdAt = s.clock()
	}
	status := strings.TrimSpace(string(entry.Status))
	if status == "" {
		status = string(core.DispatchActivityStatusOK)
	}

	record := &dispatchActivityRecord{
		ID:         id,
		RequestID:  strings.TrimSpace(entry.RequestID),
		Endpoint:   strings.TrimSpace(entry.Endpoint),
		Method:     strings.ToUpper(strings.TrimSpace(entry.Method)),
		URL:        strings.TrimSpace(entry.URL),
		StatusCode: entry.StatusCode,
		OK:         entry.OK,
		Signed:     entry.Signed,
		Status:     status,
		Error:      strings.TrimSpace(entry.Error),
		DurationMS: entry.DurationMS,
		CreatedAt:  createdAt,
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *ActivityStore) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	if s == nil || s.repo == nil {
		return core.ActivityPage{}, fmt.Errorf("sqlstore: activity store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultActivityPerPage
	}
	if perPage > maxActivityPerPage {
		perPage = maxActivityPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if endpoint := strings.TrimSpace(filter.Endpoint); endpoint != "" {
		selectors = append(selectors, repository.SelectBy("endpoint", "=", endpoint))
	}
	if method := strings.TrimSpace(filter.Method); method != "" {
		selectors = append(selectors, repository.SelectBy("method", "=", strings.ToUpper(method)))
	}
	if filter.OK != nil {
		selectors = append(selectors, repository.SelectBy("ok", "=", *filter.OK))
	}
	if filter.From != nil {
		from := filter.From.UTC()
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.created_at >= ?", from)
		}))
	}
	if filter.To != nil {
		to := filter.To.UTC()
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.created_at <= ?", to)
		}))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.ActivityPage{}, err
	}
	items := make([]core.DispatchActivityEntry, 0, len(records))
	for _, record := range records {
		items = append(items, record.toDomain())
	}
	hasNext := offset+len(items) < total
	nextOffset := ""
	if hasNext {
		nextOffset = strconv.Itoa(offset + len(items))
	}
	return core.ActivityPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextOffset,
	}, nil
}

func (s *ActivityStore) Get(ctx context.Context, id string) (core.DispatchActivityEntry, error) {
	if s == nil || s.db == nil {
		return core.DispatchActivityEntry{}, fmt.Errorf("sqlstore: activity store is not configured")
	}
	id = strings.TrimSpace(id)
	record := &dispatchActivityRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.DispatchActivityEntry{}, core.WrapServiceError(
				core.ErrActivityNotFound,
				goerrors.CategoryNotFound,
				"sqlstore: dispatch activity not found",
				map[string]any{"id": id},
			)
		}
		return core.DispatchActivityEntry{}, err
	}
	return record.toDomain(), nil
}

// Prune applies the retention policy and returns the number of deleted rows.
func (s *ActivityStore) Prune(ctx context.Context, policy RetentionPolicy) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: activity store is not configured")
	}
	deleted := 0

	if policy.TTL > 0 {
		cutoff := s.clock().Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*dispatchActivityRecord)(nil)).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += int(affected)
	}

	if policy.RowCap > 0 {
		total, err := s.db.NewSelect().Model((*dispatchActivityRecord)(nil)).Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.RowCap
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM dispatch_activity_entries WHERE id IN (SELECT id FROM dispatch_activity_entries ORDER BY created_at ASC LIMIT ?)",
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += int(affected)
		}
	}

	return deleted, nil
}

func (s *ActivityStore) clock() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now().UTC()
}

func (r *dispatchActivityRecord) toDomain() core.DispatchActivityEntry {
	if r == nil {
		return core.DispatchActivityEntry{}
	}
	return core.DispatchActivityEntry{
		ID:         r.ID,
		RequestID:  r.RequestID,
		Endpoint:   r.Endpoint,
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode,
		OK:         r.OK,
		Signed:     r.Signed,
		Status:     core.DispatchActivityStatus(r.Status),
		Error:      r.Error,
		DurationMS: r.DurationMS,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}
