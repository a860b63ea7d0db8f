package roots_test

import (
	"testing"

	// Packages
	roots "github.com/mutablelogic/go-mcp/pkg/mcp/roots"
	schema "github.com/mutablelogic/go-mcp/pkg/mcp/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_roots_001_seed_order(t *testing.T) {
	r := roots.New(nil,
		schema.Root{URI: "file:///a", Name: "A"},
		schema.Root{URI: "file:///b", Name: "B"},
	)
	assert.Equal(t, []schema.Root{
		{URI: "file:///a", Name: "A"},
		{URI: "file:///b", Name: "B"},
	}, r.List())
}

func Test_roots_002_duplicate_seed_last_write_wins_in_place(t *testing.T) {
	r := roots.New(nil,
		schema.Root{URI: "file:///a", Name: "first"},
		schema.Root{URI: "file:///b", Name: "B"},
		schema.Root{URI: "file:///a", Name: "second"},
	)
	assert.Equal(t, []schema.Root{
		{URI: "file:///a", Name: "second"},
		{URI: "file:///b", Name: "B"},
	}, r.List())
}

func Test_roots_003_add_reports_change(t *testing.T) {
	calls := 0
	r := roots.New(func() { calls++ })
	r.Add(schema.Root{URI: "file:///a", Name: "A"})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, r.Len())
}

func Test_roots_004_remove_unknown_is_noop(t *testing.T) {
	calls := 0
	r := roots.New(func() { calls++ }, schema.Root{URI: "file:///a"})
	assert.False(t, r.Remove("file:///missing"))
	assert.Equal(t, 0, calls)
}

func Test_roots_005_remove_known_preserves_order(t *testing.T) {
	r := roots.New(nil,
		schema.Root{URI: "file:///a"},
		schema.Root{URI: "file:///b"},
		schema.Root{URI: "file:///c"},
	)
	assert.True(t, r.Remove("file:///b"))
	assert.Equal(t, []schema.Root{{URI: "file:///a"}, {URI: "file:///c"}}, r.List())
}
