package check_availability

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantFrom time.Time
		wantTo   time.Time
		wantErr  bool
	}{
		{
			name:     "single day",
			query:    "from=2026-03-05",
			wantFrom: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "inclusive range",
			query:    "from=2026-03-05&to=2026-03-07",
			wantFrom: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
			wantTo:   time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC),
		},
		{name: "missing from", query: "to=2026-03-07", wantErr: true},
		{name: "bad date", query: "from=05/03/2026", wantErr: true},
		{name: "to before from", query: "from=2026-03-07&to=2026-03-05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			from, to, err := parseRange(q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}
