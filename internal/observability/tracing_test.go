package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_Disabled(t *testing.T) {
	t.Parallel()

	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_DefaultEndpoint(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	shutdown, err := Setup(ctx, Config{
		Enabled:     true,
		ServiceName: "test-service",
		Environment: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	// Shutdown flushes; export errors to the absent collector are not
	// surfaced here.
	_ = shutdown(ctx)
}
