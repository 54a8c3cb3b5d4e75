package repository

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm/clause"

	"kycore/pkg/ddd"
)

// DefaultScanBatchSize is used by Scan when no batch size is given.
const DefaultScanBatchSize = 100

// Lock is a row-level lock mode. Locks are applied only inside RunTransaction;
// outside a transaction they are ignored with a warning.
type Lock int

const (
	LockNone Lock = iota
	// LockShared is FOR SHARE.
	LockShared
	// LockExclusive is FOR UPDATE.
	LockExclusive
	// LockExclusiveSkipLocked is FOR UPDATE SKIP LOCKED.
	LockExclusiveSkipLocked
	// LockExclusiveNoWait is FOR UPDATE NOWAIT.
	LockExclusiveNoWait
	// LockForNoKeyUpdate is FOR NO KEY UPDATE.
	LockForNoKeyUpdate
)

func (l Lock) String() string {
	switch l {
	case LockNone:
		return "none"
	case LockShared:
		return "shared"
	case LockExclusive:
		return "exclusive"
	case LockExclusiveSkipLocked:
		return "exclusive_skip_locked"
	case LockExclusiveNoWait:
		return "exclusive_no_wait"
	case LockForNoKeyUpdate:
		return "for_no_key_update"
	default:
		return "unknown"
	}
}

// locking translates l into the store's locking clause on table.
func (l Lock) locking(table string) (clause.Locking, bool) {
	t := clause.Table{Name: table}
	switch l {
	case LockShared:
		return clause.Locking{Strength: clause.LockingStrengthShare, Table: t}, true
	case LockExclusive:
		return clause.Locking{Strength: clause.LockingStrengthUpdate, Table: t}, true
	case LockExclusiveSkipLocked:
		return clause.Locking{Strength: clause.LockingStrengthUpdate, Table: t, Options: clause.LockingOptionsSkipLocked}, true
	case LockExclusiveNoWait:
		return clause.Locking{Strength: clause.LockingStrengthUpdate, Table: t, Options: clause.LockingOptionsNoWait}, true
	case LockForNoKeyUpdate:
		return clause.Locking{Strength: "NO KEY UPDATE", Table: t}, true
	default:
		return clause.Locking{}, false
	}
}

// Order sorts results by a column.
type Order struct {
	Column string
	Desc   bool
}

// FindOneOptions tunes FindOne.
type FindOneOptions struct {
	Relations []string
	Lock      Lock
}

// FindOptions tunes FindMany.
type FindOptions struct {
	Relations []string
	Lock      Lock
	Offset    int
	Limit     int
	OrderBy   []Order
}

// Pagination selects a page. Page and Limit take precedence over Offset.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// skip returns the number of rows to skip.
func (p Pagination) skip() int {
	switch {
	case p.Page > 0 && p.Limit > 0:
		return (p.Page - 1) * p.Limit
	case p.Offset > 0:
		return p.Offset
	default:
		return 0
	}
}

// PageParams selects a filtered page.
type PageParams[F Filters] struct {
	Filters    F
	Pagination Pagination
	OrderBy    []Order
	Relations  []string
	Lock       Lock
}

// Page is one page of results with the total match count.
type Page[E any] struct {
	Data  []E
	Count int64
	Limit int
	Page  int
}

// ScanOptions tunes Scan. Without OrderBy the scan is ordered by id.
type ScanOptions[F Filters] struct {
	Filters   F
	BatchSize int
	OrderBy   []Order
	Relations []string
	Lock      Lock
}

// ModifyOption tunes Save, SaveMultiple, Delete and DeleteMultiple.
type ModifyOption func(*modifyConfig)

type modifyConfig struct {
	skipEvents bool
}

// SkipEvents leaves queued aggregate events unpublished.
func SkipEvents() ModifyOption {
	return func(c *modifyConfig) { c.skipEvents = true }
}

func newModifyConfig(opts []ModifyOption) modifyConfig {
	var c modifyConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures a Repository.
type Option func(*config)

type config struct {
	name      string
	emitter   ddd.Emitter
	logger    Logger
	metrics   Metrics
	tracer    trace.Tracer
	relations map[string][]string
	required  []string
	txTimeout time.Duration
}

// WithName overrides the entity name used in logs, metrics and errors.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithEmitter publishes aggregate events through emitter.
func WithEmitter(emitter ddd.Emitter) Option {
	return func(c *config) { c.emitter = emitter }
}

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics sets the metrics sink.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) { c.metrics = metrics }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) { c.tracer = tracer }
}

// WithRelations maps symbolic relation names to the association paths preloaded
// for them, e.g. {"parts": {"Parts"}}.
func WithRelations(relations map[string][]string) Option {
	return func(c *config) { c.relations = relations }
}

// WithRequiredRelations preloads paths on every read.
func WithRequiredRelations(paths ...string) Option {
	return func(c *config) { c.required = append(c.required, paths...) }
}

// WithTransactionTimeout bounds RunTransaction.
func WithTransactionTimeout(d time.Duration) Option {
	return func(c *config) { c.txTimeout = d }
}
