package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeJSONRoundTrip(t *testing.T) {
	src := Time(time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local))

	data, err := json.Marshal(src)
	require.NoError(t, err)
	assert.Equal(t, `"2026-03-14 09:26:53"`, string(data))

	var dst Time
	require.NoError(t, json.Unmarshal(data, &dst))
	assert.True(t, src.Time().Equal(dst.Time()))
}

func TestTimeJSONZero(t *testing.T) {
	data, err := json.Marshal(Time{})
	require.NoError(t, err)
	assert.Equal(t, `""`, string(data))

	var dst Time
	require.NoError(t, json.Unmarshal([]byte(`""`), &dst))
	assert.True(t, dst.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`null`), &dst))
	assert.True(t, dst.IsZero())
}

func TestTimeScan(t *testing.T) {
	var tm Time
	now := time.Now()

	require.NoError(t, tm.Scan(now))
	assert.True(t, tm.Time().Equal(now))

	require.NoError(t, tm.Scan(nil))
	assert.True(t, tm.IsZero())

	assert.Error(t, tm.Scan("not a time"))
}

func TestSameDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want bool
	}{
		{"same instant", day, day, true},
		{"same day different hours", day, day.Add(9 * time.Hour), true},
		{
			// 午夜是边界，不是 24 小时窗口
			"minutes apart across midnight",
			time.Date(2024, 1, 1, 23, 59, 0, 0, time.Local),
			time.Date(2024, 1, 2, 0, 1, 0, 0, time.Local),
			false,
		},
		{
			"hours apart same day",
			time.Date(2024, 1, 1, 0, 1, 0, 0, time.Local),
			time.Date(2024, 1, 1, 23, 59, 0, 0, time.Local),
			true,
		},
		{"different months", day, day.AddDate(0, 1, 0), false},
		{"different years", day, day.AddDate(1, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameDay(tt.a, tt.b))
			assert.Equal(t, tt.want, SameDay(tt.b, tt.a))
		})
	}
}

func TestDayStart(t *testing.T) {
	got := DayStart(time.Date(2024, 7, 15, 18, 42, 31, 999, time.Local))
	assert.Equal(t, time.Date(2024, 7, 15, 0, 0, 0, 0, time.Local), got)
}
