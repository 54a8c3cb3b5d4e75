// Package repository implements the generic repository over gorm.
//
// A Repository is stateless across tasks: every operation re-resolves its storage
// session from the ambient request context, using the task's open transaction when
// there is one and the default connection otherwise.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kycore/pkg/ddd"
	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/sentinel"
	kstrings "kycore/pkg/platform/strings"
	"kycore/pkg/platform/tx"
	"kycore/pkg/query"
	"kycore/pkg/requestcontext"
)

// Repository persists entities E, found by filters F, stored as rows R.
type Repository[E ddd.Record, F Filters, R Row] struct {
	db     *gorm.DB
	mapper Mapper[E, R]
	table  string
	config
}

// New creates a repository over db.
func New[E ddd.Record, F Filters, R Row](db *gorm.DB, mapper Mapper[E, R], opts ...Option) *Repository[E, F, R] {
	var zero R
	r := &Repository[E, F, R]{
		db:     db,
		mapper: mapper,
		table:  zero.TableName(),
	}
	for _, opt := range opts {
		opt(&r.config)
	}
	if r.name == "" {
		r.name = r.table
	}
	if r.logger == nil {
		r.logger = nopLogger{}
	}
	if r.metrics == nil {
		r.metrics = nopMetrics{}
	}
	if r.tracer == nil {
		r.tracer = defaultTracer()
	}
	return r
}

// Name returns the entity name used in logs and errors.
func (r *Repository[E, F, R]) Name() string { return r.name }

// session returns the storage session for this call and whether it belongs to an
// open transaction. Never cache the result: a task may enter or leave a
// transaction between two calls.
func (r *Repository[E, F, R]) session(ctx context.Context) (*gorm.DB, *tx.Handle) {
	if h, ok := tx.From(ctx); ok {
		return h.DB().WithContext(ctx), h
	}
	return r.db.WithContext(ctx), nil
}

type readSpec struct {
	relations []string
	lock      Lock
	orderBy   []Order
	offset    int
	limit     int
}

// read builds a fresh query chain for conds.
func (r *Repository[E, F, R]) read(ctx context.Context, conds query.Conditions, rs readSpec) (*gorm.DB, error) {
	db, handle := r.session(ctx)
	db = db.Model(new(R))

	where, err := conds.Where()
	if err != nil {
		return nil, err
	}
	if len(where.Exprs) > 0 {
		db = db.Clauses(where)
	}

	paths, err := r.relationPaths(rs.relations)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		db = db.Preload(p)
	}

	if locking, ok := rs.lock.locking(r.table); ok {
		if handle == nil {
			r.logger.Warn(ctx, "row lock ignored outside transaction", "entity", r.name, "lock", rs.lock.String())
		} else {
			db = db.Clauses(locking)
		}
	}

	for _, o := range rs.orderBy {
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: o.Desc})
	}
	if rs.offset > 0 {
		db = db.Offset(rs.offset)
	}
	if rs.limit > 0 {
		db = db.Limit(rs.limit)
	}
	return db, nil
}

func (r *Repository[E, F, R]) relationPaths(names []string) ([]string, error) {
	paths := append([]string(nil), r.required...)
	for _, name := range names {
		mapped, ok := r.relations[name]
		if !ok {
			return nil, dErrors.Wrap(
				dErrors.Newf(dErrors.CodeUnknownRelation, "unknown relation %q", name),
				dErrors.CodeArgumentInvalid,
				fmt.Sprintf("invalid relations for %s", r.name),
			)
		}
		paths = append(paths, mapped...)
	}
	return kstrings.Compact(paths), nil
}

func (r *Repository[E, F, R]) toEntities(rows []R) ([]E, error) {
	out := make([]E, 0, len(rows))
	for _, row := range rows {
		e, err := r.mapper.ToDomainEntity(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// publish emits the aggregate's queued events. Inside a transaction publication
// waits for the commit; a rollback discards it and the events stay queued.
func (r *Repository[E, F, R]) publish(ctx context.Context, handle *tx.Handle, entities []E, cfg modifyConfig) error {
	if cfg.skipEvents || r.emitter == nil {
		return nil
	}
	var sources []ddd.EventSource
	for _, e := range entities {
		if src, ok := any(e).(ddd.EventSource); ok && len(src.PendingEvents()) > 0 {
			sources = append(sources, src)
		}
	}
	if len(sources) == 0 {
		return nil
	}

	run := func(ctx context.Context) error {
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		for _, src := range sources {
			g.Go(func() error { return src.PublishEvents(gctx, r.emitter) })
		}
		if err := g.Wait(); err != nil {
			r.logger.Error(ctx, err, "entity events publication failed", "entity", r.name)
			return err
		}
		r.logger.Debug(ctx, "entity events published", "entity", r.name, "aggregates", len(sources), "took_ms", time.Since(start).Milliseconds())
		return nil
	}

	if handle != nil {
		handle.AfterCommit(run)
		return nil
	}
	return run(ctx)
}

func (r *Repository[E, F, R]) needsWrite(ctx context.Context, entity E) (bool, error) {
	if !entity.Created() && !entity.Updated() {
		r.logger.Debug(ctx, "entity persisting skipped", "entity", r.name, "id", entity.ID().String())
		r.metrics.IncSaveSkipped(r.name)
		return false, nil
	}
	if hook, ok := any(entity).(ddd.BeforeSaver); ok {
		if err := hook.BeforeSave(); err != nil {
			return false, err
		}
	}
	return true, nil
}

func upsert(db *gorm.DB, value any) error {
	return db.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}

// Save writes entity unless it is neither new nor modified, then publishes its
// queued events (also when the write was skipped). It returns the entity
// rehydrated from the written row.
func (r *Repository[E, F, R]) Save(ctx context.Context, entity E, opts ...ModifyOption) (_ E, err error) {
	ctx, done := r.track(ctx, "Save")
	defer func() { done(err) }()
	cfg := newModifyConfig(opts)
	_, handle := r.session(ctx)

	write, err := r.needsWrite(ctx, entity)
	if err != nil {
		return entity, err
	}
	if !write {
		return entity, r.publish(ctx, handle, []E{entity}, cfg)
	}

	row := r.mapper.ToOrmEntity(entity)
	db, _ := r.session(ctx)
	start := time.Now()
	if err := upsert(db, &row); err != nil {
		r.logger.Error(ctx, err, "entity persisting failed", "entity", r.name, "id", entity.ID().String())
		return entity, err
	}
	r.logger.Debug(ctx, "entity persisted", "entity", r.name, "id", entity.ID().String(), "took_ms", time.Since(start).Milliseconds())

	saved, err := r.mapper.ToDomainEntity(row)
	if err != nil {
		return entity, err
	}
	if err := r.publish(ctx, handle, []E{entity}, cfg); err != nil {
		return saved, err
	}
	return saved, nil
}

// SaveMultiple writes every new or modified entity in one batch upsert and then
// publishes the events of all entities, written or not. The result keeps the
// input order; written entities are rehydrated.
func (r *Repository[E, F, R]) SaveMultiple(ctx context.Context, entities []E, opts ...ModifyOption) (_ []E, err error) {
	ctx, done := r.track(ctx, "SaveMultiple")
	defer func() { done(err) }()
	cfg := newModifyConfig(opts)
	db, handle := r.session(ctx)

	var (
		rows    []R
		indexes []int
	)
	for i, e := range entities {
		write, err := r.needsWrite(ctx, e)
		if err != nil {
			return nil, err
		}
		if write {
			rows = append(rows, r.mapper.ToOrmEntity(e))
			indexes = append(indexes, i)
		}
	}

	result := append([]E(nil), entities...)
	if len(rows) > 0 {
		start := time.Now()
		if err := upsert(db, &rows); err != nil {
			r.logger.Error(ctx, err, "multiple entities persisting failed", "entity", r.name, "count", len(rows))
			return nil, err
		}
		r.logger.Debug(ctx, "multiple entities persisted", "entity", r.name, "count", len(rows), "took_ms", time.Since(start).Milliseconds())
		for j, row := range rows {
			saved, err := r.mapper.ToDomainEntity(row)
			if err != nil {
				return nil, err
			}
			result[indexes[j]] = saved
		}
	}

	if err := r.publish(ctx, handle, entities, cfg); err != nil {
		return result, err
	}
	return result, nil
}

// Count returns the number of rows matching filters.
func (r *Repository[E, F, R]) Count(ctx context.Context, filters F) (n int64, err error) {
	ctx, done := r.track(ctx, "Count")
	defer func() { done(err) }()

	db, err := r.read(ctx, filters.Conditions(), readSpec{})
	if err != nil {
		return 0, err
	}
	err = db.Count(&n).Error
	return n, err
}

// FindOne returns the first entity matching filters; found is false when none
// does.
func (r *Repository[E, F, R]) FindOne(ctx context.Context, filters F, opts FindOneOptions) (E, bool, error) {
	return r.findOne(ctx, "FindOne", filters.Conditions(), opts)
}

func (r *Repository[E, F, R]) findOne(ctx context.Context, operation string, conds query.Conditions, opts FindOneOptions) (entity E, found bool, err error) {
	ctx, done := r.track(ctx, operation)
	defer func() { done(err) }()

	db, err := r.read(ctx, conds, readSpec{relations: opts.Relations, lock: opts.Lock, limit: 1})
	if err != nil {
		return entity, false, err
	}
	var rows []R
	if err := db.Find(&rows).Error; err != nil {
		r.logger.Error(ctx, err, "entity lookup failed", "entity", r.name)
		return entity, false, err
	}
	if len(rows) == 0 {
		return entity, false, nil
	}
	entity, err = r.mapper.ToDomainEntity(rows[0])
	if err != nil {
		return entity, false, err
	}
	return entity, true, nil
}

// FindOneOrThrow is FindOne that fails with CodeNotFound (wrapping
// sentinel.ErrNotFound) when nothing matches.
func (r *Repository[E, F, R]) FindOneOrThrow(ctx context.Context, filters F, opts FindOneOptions) (E, error) {
	entity, found, err := r.FindOne(ctx, filters, opts)
	if err != nil {
		return entity, err
	}
	if !found {
		return entity, r.notFound()
	}
	return entity, nil
}

// FindOneByIDOrThrow finds the entity with id or fails with CodeNotFound.
func (r *Repository[E, F, R]) FindOneByIDOrThrow(ctx context.Context, id domain.ID, opts FindOneOptions) (E, error) {
	var conds query.Conditions
	conds.Add("id", query.Value(id))
	entity, found, err := r.findOne(ctx, "FindOneByIDOrThrow", conds, opts)
	if err != nil {
		return entity, err
	}
	if !found {
		return entity, r.notFound()
	}
	return entity, nil
}

func (r *Repository[E, F, R]) notFound() error {
	return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, r.name+" not found")
}

// FindMany returns all entities matching filters.
func (r *Repository[E, F, R]) FindMany(ctx context.Context, filters F, opts FindOptions) (_ []E, err error) {
	ctx, done := r.track(ctx, "FindMany")
	defer func() { done(err) }()

	db, err := r.read(ctx, filters.Conditions(), readSpec{
		relations: opts.Relations,
		lock:      opts.Lock,
		orderBy:   opts.OrderBy,
		offset:    opts.Offset,
		limit:     opts.Limit,
	})
	if err != nil {
		return nil, err
	}
	var rows []R
	if err := db.Find(&rows).Error; err != nil {
		r.logger.Error(ctx, err, "entity lookup failed", "entity", r.name)
		return nil, err
	}
	return r.toEntities(rows)
}

// FindManyPaginated returns one page of matches together with the total count.
func (r *Repository[E, F, R]) FindManyPaginated(ctx context.Context, params PageParams[F]) (_ Page[E], err error) {
	ctx, done := r.track(ctx, "FindManyPaginated")
	defer func() { done(err) }()

	page := Page[E]{Limit: params.Pagination.Limit, Page: params.Pagination.Page}

	countQuery, err := r.read(ctx, params.Filters.Conditions(), readSpec{})
	if err != nil {
		return page, err
	}
	if err := countQuery.Count(&page.Count).Error; err != nil {
		return page, err
	}

	db, err := r.read(ctx, params.Filters.Conditions(), readSpec{
		relations: params.Relations,
		lock:      params.Lock,
		orderBy:   params.OrderBy,
		offset:    params.Pagination.skip(),
		limit:     params.Pagination.Limit,
	})
	if err != nil {
		return page, err
	}
	var rows []R
	if err := db.Find(&rows).Error; err != nil {
		r.logger.Error(ctx, err, "entity lookup failed", "entity", r.name)
		return page, err
	}
	page.Data, err = r.toEntities(rows)
	return page, err
}

// Scan walks all matches page by page, calling fn with each non-empty batch until
// a batch is shorter than the batch size. Pages are re-queried with OFFSET, so rows
// inserted or deleted concurrently may be skipped or visited twice.
func (r *Repository[E, F, R]) Scan(ctx context.Context, fn func(ctx context.Context, batch []E) error, opts ScanOptions[F]) error {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultScanBatchSize
	}
	orderBy := opts.OrderBy
	if len(orderBy) == 0 {
		orderBy = []Order{{Column: "id"}}
	}

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := r.FindManyPaginated(ctx, PageParams[F]{
			Filters:    opts.Filters,
			Pagination: Pagination{Page: page, Limit: size},
			OrderBy:    orderBy,
			Relations:  opts.Relations,
			Lock:       opts.Lock,
		})
		if err != nil {
			return err
		}
		if len(result.Data) == 0 {
			return nil
		}
		if err := fn(ctx, result.Data); err != nil {
			return err
		}
		if len(result.Data) < size {
			return nil
		}
	}
}

// Delete removes entity's row and publishes its queued events.
func (r *Repository[E, F, R]) Delete(ctx context.Context, entity E, opts ...ModifyOption) (_ E, err error) {
	ctx, done := r.track(ctx, "Delete")
	defer func() { done(err) }()
	cfg := newModifyConfig(opts)
	db, handle := r.session(ctx)

	row := r.mapper.ToOrmEntity(entity)
	if err := db.Delete(&row).Error; err != nil {
		r.logger.Error(ctx, err, "entity delete failed", "entity", r.name, "id", entity.ID().String())
		return entity, err
	}
	r.logger.Debug(ctx, "entity deleted", "entity", r.name, "id", entity.ID().String())
	return entity, r.publish(ctx, handle, []E{entity}, cfg)
}

// DeleteMultiple removes the rows of entities and publishes their queued events.
func (r *Repository[E, F, R]) DeleteMultiple(ctx context.Context, entities []E, opts ...ModifyOption) (_ []E, err error) {
	ctx, done := r.track(ctx, "DeleteMultiple")
	defer func() { done(err) }()
	cfg := newModifyConfig(opts)
	db, handle := r.session(ctx)

	if len(entities) == 0 {
		return entities, nil
	}
	rows := make([]R, 0, len(entities))
	for _, e := range entities {
		rows = append(rows, r.mapper.ToOrmEntity(e))
	}
	if err := db.Delete(&rows).Error; err != nil {
		r.logger.Error(ctx, err, "multiple entities delete failed", "entity", r.name, "count", len(rows))
		return entities, err
	}
	r.logger.Debug(ctx, "multiple entities deleted", "entity", r.name, "count", len(rows))
	return entities, r.publish(ctx, handle, entities, cfg)
}

// RunTransaction runs fn inside one storage transaction registered in the task's
// request context, so every repository call made with ctx joins it. The handle is
// cleared when fn returns, whatever the outcome. Work queued with AfterCommit
// (event publication) runs after a successful commit; its errors are returned.
//
// Errors: CodeContextMissing outside a task scope, CodeTransactionOverride when
// the task already has an open transaction; otherwise fn's error or the store's.
func (r *Repository[E, F, R]) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if !requestcontext.Has(ctx) {
		r.metrics.IncTransaction(OutcomeRejected)
		return dErrors.New(dErrors.CodeContextMissing, "cannot run transaction without request context")
	}
	if _, open := tx.From(ctx); open {
		r.metrics.IncTransaction(OutcomeRejected)
		return dErrors.New(dErrors.CodeTransactionOverride, "another transaction is already running; nested transactions are not allowed")
	}
	contextID, _ := requestcontext.ID(ctx)

	ctx, done := r.track(ctx, "RunTransaction")
	defer func() { done(err) }()
	if r.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.txTimeout)
		defer cancel()
	}

	var handle *tx.Handle
	err = r.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		handle = tx.NewHandle(gtx)
		if err := tx.Register(ctx, handle); err != nil {
			return err
		}
		defer func() { _ = tx.Release(ctx) }()

		r.logger.Debug(ctx, "transaction started", "context_id", contextID)
		return fn(ctx)
	})
	if err != nil {
		r.metrics.IncTransaction(OutcomeRolledBack)
		r.logger.Error(ctx, err, "transaction failed", "context_id", contextID)
		return err
	}
	r.metrics.IncTransaction(OutcomeCommitted)
	r.logger.Debug(ctx, "transaction committed", "context_id", contextID)

	if err := handle.Flush(ctx); err != nil {
		r.logger.Error(ctx, err, "post-commit work failed", "context_id", contextID)
		return err
	}
	return nil
}

// TxRunner opens transactions; every Repository is one.
type TxRunner interface {
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// InTransaction runs fn in a transaction and returns its result.
func InTransaction[T any](ctx context.Context, runner TxRunner, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := runner.RunTransaction(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// IsNotFound reports whether err is the repository's not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound)
}
