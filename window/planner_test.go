package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRecordingWindowsPartitionRounds(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for size := 1; size <= 45; size++ {
			for ov := 0; ov <= 4; ov++ {
				plan, err := Plan(n, size, ov)
				require.NoError(t, err)
				require.NotEmpty(t, plan)

				next := 0
				for _, w := range plan {
					require.Equal(t, next, w.RecordStart, "n=%d size=%d ov=%d", n, size, ov)
					require.Less(t, w.RecordStart, w.RecordEnd)
					require.Equal(t, max(0, w.RecordStart-ov), w.DecodeStart)
					require.Equal(t, min(w.RecordEnd+ov, n), w.DecodeEnd)
					next = w.RecordEnd
				}
				require.Equal(t, n, next, "final round not covered: n=%d size=%d", n, size)
			}
		}
	}
}

func TestPlanOddTail(t *testing.T) {
	plan, err := Plan(1001, 100, 50)
	require.NoError(t, err)
	require.Len(t, plan, 11)

	assert.Equal(t, Window{RecordStart: 0, RecordEnd: 100, DecodeStart: 0, DecodeEnd: 150}, plan[0])
	assert.Equal(t, Window{RecordStart: 100, RecordEnd: 200, DecodeStart: 50, DecodeEnd: 250}, plan[1])
	assert.Equal(t, Window{RecordStart: 900, RecordEnd: 1000, DecodeStart: 850, DecodeEnd: 1001}, plan[9])
	assert.Equal(t, Window{RecordStart: 1000, RecordEnd: 1001, DecodeStart: 950, DecodeEnd: 1001}, plan[10])
}

func TestPlanWindowCoversHistory(t *testing.T) {
	for _, size := range []int{10, 11, 500} {
		plan, err := Plan(10, size, 3)
		require.NoError(t, err)
		require.Equal(t, []Window{{RecordStart: 0, RecordEnd: 10, DecodeStart: 0, DecodeEnd: 10}}, plan)
	}
}

func TestPlanSingleRoundWindows(t *testing.T) {
	plan, err := Plan(4, 1, 1)
	require.NoError(t, err)
	require.Equal(t, []Window{
		{RecordStart: 0, RecordEnd: 1, DecodeStart: 0, DecodeEnd: 2},
		{RecordStart: 1, RecordEnd: 2, DecodeStart: 0, DecodeEnd: 3},
		{RecordStart: 2, RecordEnd: 3, DecodeStart: 1, DecodeEnd: 4},
		{RecordStart: 3, RecordEnd: 4, DecodeStart: 2, DecodeEnd: 4},
	}, plan)
}

func TestPlanRejectsBadParameters(t *testing.T) {
	cases := []struct {
		name              string
		rounds, size, ovl int
		field             string
	}{
		{"no rounds", 0, 10, 0, "num_rounds"},
		{"zero window", 10, 0, 0, "window_size"},
		{"negative overlap", 10, 5, -1, "overlap"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Plan(tc.rounds, tc.size, tc.ovl)
			require.ErrorIs(t, err, ErrConfiguration)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestPlannerStopsAfterLastWindow(t *testing.T) {
	p, err := NewPlanner(25, 10, 2)
	require.NoError(t, err)
	require.False(t, p.Done())

	var got []Window
	for w, ok := p.Next(); ok; w, ok = p.Next() {
		got = append(got, w)
	}
	require.True(t, p.Done())
	_, ok := p.Next()
	require.False(t, ok)

	want, err := Plan(25, 10, 2)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Len(t, got, 3)
	assert.Equal(t, 25, got[2].RecordEnd)
}

func TestWindowString(t *testing.T) {
	w := Window{RecordStart: 10, RecordEnd: 20, DecodeStart: 5, DecodeEnd: 25}
	assert.Equal(t, "record[10,20) decode[5,25)", w.String())
	assert.Equal(t, 10, w.RecordRounds())
	assert.Equal(t, 20, w.DecodeRounds())
}
