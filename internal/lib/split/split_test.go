package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqualShare(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		count   int
		want    int64
		wantErr error
	}{
		{name: "single participant owes everything", total: 90, count: 1, want: 90},
		{name: "even split", total: 100, count: 2, want: 50},
		{name: "floor with rounding loss", total: 100, count: 3, want: 33},
		{name: "total smaller than count", total: 2, count: 5, want: 0},
		{name: "zero total", total: 0, count: 4, want: 0},
		{name: "negative total rounds down", total: -10, count: 3, want: -4},
		{name: "zero participants", total: 100, count: 0, wantErr: ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EqualShare(tt.total, tt.count)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqualShare_SumNeverExceedsTotal(t *testing.T) {
	for total := int64(0); total <= 200; total += 7 {
		for n := 1; n <= 12; n++ {
			share, err := EqualShare(total, n)
			require.NoError(t, err)

			sum := share * int64(n)
			assert.LessOrEqual(t, sum, total)
			assert.Less(t, total-sum, int64(n), "remainder must be smaller than participant count")
		}
	}
}

func TestRemainder(t *testing.T) {
	rem, err := Remainder(100, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rem)

	rem, err = Remainder(90, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rem)

	_, err = Remainder(10, 0)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}
