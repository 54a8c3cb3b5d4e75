package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Repository holds the Prometheus metrics reported by repositories.
type Repository struct {
	OperationDuration *prometheus.HistogramVec
	SaveSkipped       *prometheus.CounterVec
	Transactions      *prometheus.CounterVec
}

// NewRepository creates and registers the repository metrics on reg.
func NewRepository(reg prometheus.Registerer) *Repository {
	factory := promauto.With(reg)
	return &Repository{
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kycore_repository_operation_duration_seconds",
			Help:    "Duration of repository operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "operation"}),
		SaveSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycore_repository_save_skipped_total",
			Help: "Saves skipped because the entity was neither new nor modified",
		}, []string{"entity"}),
		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycore_repository_transactions_total",
			Help: "Repository transactions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Repository) ObserveOperation(entity, operation string, d time.Duration) {
	m.OperationDuration.WithLabelValues(entity, operation).Observe(d.Seconds())
}

func (m *Repository) IncSaveSkipped(entity string) {
	m.SaveSkipped.WithLabelValues(entity).Inc()
}

func (m *Repository) IncTransaction(outcome string) {
	m.Transactions.WithLabelValues(outcome).Inc()
}

// Users holds the metrics of the user module.
type Users struct {
	UsersCreated     prometheus.Counter
	KYCStatusChanges *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
}

func NewUsers(reg prometheus.Registerer) *Users {
	factory := promauto.With(reg)
	return &Users{
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kycore_users_created_total",
			Help: "Total number of users created in the system",
		}),
		KYCStatusChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycore_users_kyc_status_changes_total",
			Help: "KYC status transitions by target status",
		}, []string{"status"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kycore_users_cache_lookups_total",
			Help: "User cache lookups by result",
		}, []string{"result"}),
	}
}

// IncrementUsersCreated increments the users created counter by 1
func (m *Users) IncrementUsersCreated() {
	m.UsersCreated.Inc()
}

func (m *Users) IncrementKYCStatusChange(status string) {
	m.KYCStatusChanges.WithLabelValues(status).Inc()
}

func (m *Users) IncrementCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}
