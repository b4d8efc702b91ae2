package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *ActionRegistry {
	return &ActionRegistry{
		Version: "1.0.0",
		Actions: []Action{
			{ID: "search_hotels", HintType: "action"},
			{ID: "show_guide_", HintType: "suggestion", Dynamic: true},
		},
	}
}

func TestLookup(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name   string
		id     string
		wantID string
		found  bool
	}{
		{"static exact match", "search_hotels", "search_hotels", true},
		{"dynamic prefix match", "show_guide_paris", "show_guide_", true},
		{"dynamic prefix alone", "show_guide_", "show_guide_", true},
		{"static no prefix match", "search_hotels_paris", "", false},
		{"unknown id", "launch_rocket", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := reg.Lookup(tt.id)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, a.ID)
			}
		})
	}
}

func TestLoadRegistry(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "actions.json")
		payload := `{"version":"1.0.0","actions":[{"id":"search_hotels","hintType":"action"}]}`
		require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

		reg, err := LoadRegistry(path)
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", reg.Version)
		require.Len(t, reg.Actions, 1)

		_, ok := reg.Lookup("search_hotels")
		assert.True(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
