package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/news_radar/internal/config"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC)
	require.NoError(t, err)
	return tm
}

func TestNextRunBeforeAnchor(t *testing.T) {
	s := Schedule{Hour: 8, Minute: 30, IntervalHours: 4, Location: time.UTC}

	now := mustParse(t, "2024-06-01 07:00:00")
	assert.Equal(t, mustParse(t, "2024-06-01 08:30:00"), s.NextRun(now))

	// 恰好在锚点时刻，下一次执行就是锚点本身
	now = mustParse(t, "2024-06-01 08:30:00")
	assert.Equal(t, now, s.NextRun(now))
}

func TestNextRunAfterAnchor(t *testing.T) {
	// 锚点 00:00、间隔 4 小时，锚点过后 1.5 小时：
	// cyclesPassed = ceil(1.5/4) = 1，下一次执行为锚点+4h
	s := Schedule{Hour: 0, Minute: 0, IntervalHours: 4, Location: time.UTC}

	now := mustParse(t, "2024-06-01 01:30:00")
	assert.Equal(t, mustParse(t, "2024-06-01 04:00:00"), s.NextRun(now))
}

func TestNextRunOnLattice(t *testing.T) {
	// 锚点按当天计算，结果总是落在 当日锚点+k*间隔 的格点上且不早于 now
	s := Schedule{Hour: 6, Minute: 0, IntervalHours: 5, Location: time.UTC}

	cases := []struct {
		now  string
		want string
	}{
		{"2024-06-01 06:00:01", "2024-06-01 11:00:00"},
		{"2024-06-01 13:59:59", "2024-06-01 16:00:00"},
		{"2024-06-01 23:00:00", "2024-06-02 02:00:00"}, // 跨天
		{"2024-06-02 03:30:00", "2024-06-02 06:00:00"}, // 当日锚点未到
	}

	for _, tc := range cases {
		now := mustParse(t, tc.now)
		next := s.NextRun(now)
		assert.Equal(t, mustParse(t, tc.want), next, "now=%v", now)
		assert.False(t, next.Before(now))
	}
}

func TestNextRunExactlyOnLattice(t *testing.T) {
	// now 恰好落在格点上时推进整整一个周期
	s := Schedule{Hour: 0, Minute: 0, IntervalHours: 4, Location: time.UTC}
	now := mustParse(t, "2024-06-01 04:00:00")
	assert.Equal(t, mustParse(t, "2024-06-01 08:00:00"), s.NextRun(now))
}

func TestSleepDurationFloor(t *testing.T) {
	s := Schedule{Hour: 8, Minute: 0, IntervalHours: 4, Location: time.UTC}

	// 距锚点只差 10 秒，休眠时长仍不低于 60 秒
	now := mustParse(t, "2024-06-01 07:59:50")
	assert.Equal(t, time.Minute, s.SleepDuration(now))

	// 恰好在锚点，计算间隔为 0，同样下限 60 秒
	now = mustParse(t, "2024-06-01 08:00:00")
	assert.Equal(t, time.Minute, s.SleepDuration(now))

	// 正常情况返回真实间隔
	now = mustParse(t, "2024-06-01 06:00:00")
	assert.Equal(t, 2*time.Hour, s.SleepDuration(now))
}

func TestNewScheduleTimezoneFallback(t *testing.T) {
	s := NewSchedule(config.RefreshConfig{Hour: 8, Minute: 0, IntervalHours: 4, Timezone: "Not/AZone"})
	assert.Equal(t, time.Local, s.Location)

	s = NewSchedule(config.RefreshConfig{Hour: 8, Minute: 0, IntervalHours: 4, Timezone: "Asia/Shanghai"})
	assert.Equal(t, "Asia/Shanghai", s.Location.String())
}

func TestDriverStop(t *testing.T) {
	s := Schedule{Hour: 0, Minute: 0, IntervalHours: 4, Location: time.UTC}
	d := NewDriver(s, func(ctx context.Context) error { return nil })

	done := make(chan struct{})
	go func() {
		_ = d.Start(context.Background())
		close(done)
	}()

	require.NoError(t, d.Stop(context.Background()))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("驱动循环未能及时退出")
	}
}
