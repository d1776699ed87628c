package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteelMorgan/logslice/internal/domain"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid date", input: "2024-01-02", wantErr: false},
		{name: "leap day", input: "2024-02-29", wantErr: false},
		{name: "non-leap february 29", input: "2023-02-29", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
		{name: "impossible month", input: "2024-13-01", wantErr: true},
		{name: "missing dashes", input: "20240101", wantErr: true},
		{name: "short fields", input: "2024-1-1", wantErr: true},
		{name: "not a date", input: "abcd-ef-gh", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "trailing garbage", input: "2024-01-02x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseDateKey(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, key.String())
		})
	}
}

func TestDateKeyNext(t *testing.T) {
	tests := []struct {
		name string
		date string
		next string
	}{
		{name: "mid month", date: "2024-01-15", next: "2024-01-16"},
		{name: "month end", date: "2024-01-31", next: "2024-02-01"},
		{name: "30-day month end", date: "2024-04-30", next: "2024-05-01"},
		{name: "leap february", date: "2024-02-28", next: "2024-02-29"},
		{name: "leap february end", date: "2024-02-29", next: "2024-03-01"},
		{name: "non-leap february end", date: "2023-02-28", next: "2023-03-01"},
		{name: "year end", date: "2024-12-31", next: "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseDateKey(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.next, key.Next().String())
		})
	}
}
