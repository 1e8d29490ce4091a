package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultsToDark(t *testing.T) {
	r, err := New(60, "")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())
}

func TestRenderHeading(t *testing.T) {
	r, err := New(60, "dark")
	require.NoError(t, err)

	out, err := r.Render("# Summer Camp")
	require.NoError(t, err)
	require.Contains(t, out, "Summer Camp")
}

func TestRenderOrPlainFallsBack(t *testing.T) {
	r, err := New(40, "dark")
	require.NoError(t, err)

	out := r.RenderOrPlain("plain text, no markup")
	require.Contains(t, out, "plain text")
}
