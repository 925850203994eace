package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		sortStr   string
		wantField string
		wantOrder SortOrder
		wantErr   error
	}{
		{name: "empty", sortStr: "", wantField: "", wantOrder: SortNone},
		{name: "field only", sortStr: "name", wantField: "name", wantOrder: SortAsc},
		{name: "field and asc", sortStr: "name:asc", wantField: "name", wantOrder: SortAsc},
		{name: "field and desc", sortStr: "name:DESC", wantField: "name", wantOrder: SortDesc},
		{name: "field and none", sortStr: "name:none", wantField: "name", wantOrder: SortNone},
		{name: "too many parts", sortStr: "a:b:c", wantErr: ErrInvalidSortFormat},
		{name: "empty field", sortStr: ":asc", wantErr: ErrEmptySortField},
		{name: "invalid order", sortStr: "name:sideways", wantErr: ErrInvalidSortOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, order, err := ParseSort(tt.sortStr)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestParameters_Ordering(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
		want   string
	}{
		{name: "no field", params: NewParameters(10, 0, "", SortDesc, "", nil), want: ""},
		{name: "asc", params: NewParameters(10, 0, "name", SortAsc, "", nil), want: "name"},
		{name: "desc", params: NewParameters(10, 0, "name", SortDesc, "", nil), want: "-name"},
		{name: "none keeps field", params: NewParameters(10, 0, "name", SortNone, "", nil), want: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Ordering())
		})
	}
}

func TestParseOrdering(t *testing.T) {
	field, order := ParseOrdering("-created")
	assert.Equal(t, "created", field)
	assert.Equal(t, SortDesc, order)

	field, order = ParseOrdering("name")
	assert.Equal(t, "name", field)
	assert.Equal(t, SortAsc, order)

	field, order = ParseOrdering("  ")
	assert.Empty(t, field)
	assert.Equal(t, SortNone, order)
}

func TestParameters_Values(t *testing.T) {
	t.Run("paged with search and sort", func(t *testing.T) {
		p := NewParameters(10, 20, "name", SortDesc, "abc", map[string]string{"team": "core"})
		want := url.Values{
			"limit":    {"10"},
			"offset":   {"20"},
			"search":   {"abc"},
			"ordering": {"-name"},
			"team":     {"core"},
		}
		assert.Equal(t, want, p.Values())
	})

	t.Run("unpaged omits limit and offset", func(t *testing.T) {
		p := NewParameters(0, 0, "", SortNone, "", nil)
		assert.Empty(t, p.Values())
	})

	t.Run("standard keys override extra params", func(t *testing.T) {
		p := NewParameters(5, 0, "", SortNone, "kw", map[string]string{"search": "other", "limit": "99"})
		values := p.Values()
		assert.Equal(t, "kw", values.Get("search"))
		assert.Equal(t, "5", values.Get("limit"))
	})
}

func TestParameters_ExtraIsCopied(t *testing.T) {
	extra := map[string]string{"a": "1"}
	p := NewParameters(10, 0, "", SortNone, "", extra)

	extra["a"] = "changed"
	assert.Equal(t, "1", p.Extra()["a"])

	got := p.Extra()
	got["a"] = "mutated"
	assert.Equal(t, "1", p.Extra()["a"])
}

func TestParameters_Validate(t *testing.T) {
	assert.NoError(t, NewParameters(10, 0, "", SortNone, "", nil).Validate())
	assert.ErrorIs(t, NewParameters(-1, 0, "", SortNone, "", nil).Validate(), ErrInvalidLimit)
	assert.ErrorIs(t, NewParameters(10, -5, "", SortNone, "", nil).Validate(), ErrInvalidOffset)
	assert.ErrorIs(t, NewParameters(10, 0, "x", SortOrder("up"), "", nil).Validate(), ErrInvalidSortOrder)
}

func TestParameters_Equal(t *testing.T) {
	a := NewParameters(10, 0, "name", SortAsc, "x", map[string]string{"k": "v"})
	b := NewParameters(10, 0, "name", SortAsc, "x", map[string]string{"k": "v"})
	c := NewParameters(10, 10, "name", SortAsc, "x", map[string]string{"k": "v"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, NewParameters(0, 0, "", SortNone, "", nil).Equal(NewParameters(0, 0, "", SortNone, "", map[string]string{})))
}
