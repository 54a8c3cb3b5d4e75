package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"kycore/internal/platform/logger"
	"kycore/internal/user/models"
	"kycore/pkg/domain"
	"kycore/pkg/platform/events"
)

func TestRegisterEventHandlers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	d := events.NewDispatcher()
	RegisterEventHandlers(d, logger.NewFromCore(core))

	email, err := domain.NewEmail("jane@example.com")
	require.NoError(t, err)
	u, err := models.NewUser(email)
	require.NoError(t, err)
	require.NoError(t, u.SetKYCStatus(models.KYCStatusApproved))

	require.NoError(t, u.PublishEvents(context.Background(), d))
	assert.Empty(t, u.PendingEvents())

	entries := logs.FilterMessage("user event").All()
	require.Len(t, entries, 2)
	kinds := []any{entries[0].ContextMap()["kind"], entries[1].ContextMap()["kind"]}
	assert.ElementsMatch(t, []any{"user.registered", "user.kyc_approved"}, kinds)
	for _, e := range entries {
		assert.Equal(t, u.ID().String(), e.ContextMap()["aggregate_id"])
	}
}
