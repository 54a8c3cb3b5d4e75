package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"kycore/pkg/requestcontext"
)

// InScope runs fn inside a fresh request context, the way middleware does for a
// real request, and fails the test if fn returns an error.
func InScope(t *testing.T, fn func(ctx context.Context) error) {
	t.Helper()
	err := requestcontext.Run(context.Background(), requestcontext.Seed{Path: t.Name(), Method: "TEST"}, fn)
	require.NoError(t, err)
}
