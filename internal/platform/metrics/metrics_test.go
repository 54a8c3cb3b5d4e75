package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycore/pkg/repository"
)

var _ repository.Metrics = (*Repository)(nil)

func TestRepository(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRepository(reg)

	m.IncSaveSkipped("user")
	m.IncSaveSkipped("user")
	m.IncTransaction(repository.OutcomeCommitted)
	m.ObserveOperation("user", "Save", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SaveSkipped.WithLabelValues("user")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("committed")))

	count, err := testutil.GatherAndCount(reg, "kycore_repository_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUsers(t *testing.T) {
	m := NewUsers(prometheus.NewRegistry())
	m.IncrementUsersCreated()
	m.IncrementKYCStatusChange("APPROVED")
	m.IncrementCacheLookup(true)
	m.IncrementCacheLookup(false)
	m.IncrementCacheLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.KYCStatusChanges.WithLabelValues("APPROVED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
}
