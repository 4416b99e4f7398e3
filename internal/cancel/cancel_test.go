package cancel_test

import (
	"testing"
	"time"

	"github.com/lmachina/reachkit/internal/cancel"
	"github.com/stretchr/testify/require"
)

func TestTokenCancel(t *testing.T) {
	tok := cancel.New()
	require.False(t, tok.Cancelled())
	tok.Cancel()
	require.True(t, tok.Cancelled())
	tok.Cancel() // idempotent
	select {
	case <-tok.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel did not close")
	}
}
