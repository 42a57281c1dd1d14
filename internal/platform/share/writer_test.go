package share

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterShare(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Writer{Out: &buf}.Share(context.Background(), "Boost Roo — Progress photos"))
	assert.Equal(t, "Boost Roo — Progress photos\n", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Writer{Out: &buf}.Share(ctx, "x"), context.Canceled)
}
