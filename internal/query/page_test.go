package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		limit     int
		wantItems int
		wantTotal int
		wantErr   bool
	}{
		{
			name:      "envelope with paging uses reported count",
			raw:       `{"count": 42, "results": [{"id": 1}, {"id": 2}]}`,
			limit:     10,
			wantItems: 2,
			wantTotal: 42,
		},
		{
			name:      "envelope without paging uses result length",
			raw:       `{"count": 42, "results": [{"id": 1}]}`,
			limit:     0,
			wantItems: 1,
			wantTotal: 1,
		},
		{
			name:      "bare array",
			raw:       `[{"id": 1}, {"id": 2}, {"id": 3}]`,
			limit:     10,
			wantItems: 3,
			wantTotal: 3,
		},
		{
			name:      "empty array",
			raw:       `  []  `,
			limit:     0,
			wantItems: 0,
			wantTotal: 0,
		},
		{name: "object without results", raw: `{"detail": "nope"}`, limit: 10, wantErr: true},
		{name: "scalar", raw: `"hello"`, limit: 10, wantErr: true},
		{name: "empty body", raw: ``, limit: 10, wantErr: true},
		{name: "broken json", raw: `[{"id": 1`, limit: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := DecodePage[row]([]byte(tt.raw), tt.limit)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantItems)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestDecodePage_MalformedSentinel(t *testing.T) {
	_, err := DecodePage[row]([]byte(`{"count": 1}`), 10)
	assert.ErrorIs(t, err, ErrMalformedPage)
}

func TestEmptyPage(t *testing.T) {
	page := EmptyPage[row]()
	assert.NotNil(t, page.Items)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 0, page.Total)
}
