package registry

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/flowgraph/pkg/models"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.Default())
}

func TestRegistry_RegisterAndLookupTool(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	tool := &models.Tool{Name: "web_search", Type: models.ToolTypePython}

	reg.RegisterTool(tool)

	found, ok := reg.LookupTool("web_search")
	require.True(t, ok)
	assert.Same(t, tool, found)

	_, ok = reg.LookupTool("missing")
	assert.False(t, ok)
}

func TestRegistry_ImportModule(t *testing.T) {
	t.Parallel()

	t.Run("runs registration hook", func(t *testing.T) {
		t.Parallel()

		reg := newTestRegistry()
		called := false
		reg.RegisterModule("tools.search", func() error {
			called = true

			return nil
		})

		require.NoError(t, reg.ImportModule("tools.search"))
		assert.True(t, called)
	})

	t.Run("unregistered module fails", func(t *testing.T) {
		t.Parallel()

		reg := newTestRegistry()

		err := reg.ImportModule("tools.ghost")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tools.ghost")
	})

	t.Run("hook failure is wrapped", func(t *testing.T) {
		t.Parallel()

		reg := newTestRegistry()
		cause := errors.New("boom")
		reg.RegisterModule("tools.bad", func() error { return cause })

		err := reg.ImportModule("tools.bad")
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
	})
}

func TestRegistry_LoadToolForNode(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	reg.RegisterTool(&models.Tool{Name: "web_search"})
	reg.RegisterTool(&models.Tool{Name: "pkg.search_tool"})

	t.Run("resolves by node tool", func(t *testing.T) {
		t.Parallel()

		tool, ok := reg.LoadToolForNode(&models.Node{Name: "n", Tool: "web_search"})
		require.True(t, ok)
		assert.Equal(t, "web_search", tool.Name)
	})

	t.Run("package source key wins", func(t *testing.T) {
		t.Parallel()

		node := &models.Node{
			Name:   "n",
			Tool:   "web_search",
			Source: &models.ToolSource{Type: models.ToolSourceTypePackage, Tool: "pkg.search_tool"},
		}

		tool, ok := reg.LoadToolForNode(node)
		require.True(t, ok)
		assert.Equal(t, "pkg.search_tool", tool.Name)
	})

	t.Run("miss reports absence", func(t *testing.T) {
		t.Parallel()

		_, ok := reg.LoadToolForNode(&models.Node{Name: "n", Tool: "ghost"})
		assert.False(t, ok)
	})
}
