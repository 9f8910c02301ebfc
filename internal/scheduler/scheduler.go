package scheduler

import (
	"context"
	"time"

	"github.com/iWorld-y/news_radar/internal/config"
	"github.com/iWorld-y/news_radar/internal/logger"
)

const (
	// 最短休眠时长，避免计算出的间隔过小导致紧循环
	minSleep = time.Minute
	// 单轮执行失败后的冷却时长
	errCooldown = time.Minute
)

// Schedule 定时刷新计划：每天以锚点时刻为基准，按固定小时间隔执行。
// 初始化后不再变更。
type Schedule struct {
	Hour          int
	Minute        int
	IntervalHours int
	Location      *time.Location
}

// NewSchedule 从配置构建刷新计划，时区无法识别时回退到本地时区
func NewSchedule(cfg config.RefreshConfig) Schedule {
	loc := time.Local
	if cfg.Timezone != "" {
		if l, err := time.LoadLocation(cfg.Timezone); err == nil {
			loc = l
		} else {
			logger.Log.Warnf("无法识别时区 [%s]，回退到本地时区: %v", cfg.Timezone, err)
		}
	}
	return Schedule{
		Hour:          cfg.Hour,
		Minute:        cfg.Minute,
		IntervalHours: cfg.IntervalHours,
		Location:      loc,
	}
}

// NextRun 计算 now 之后的下一次执行时刻。
// 结果总是落在 锚点+k*间隔 的格点上：锚点未到时即为今天的锚点，
// 已过则按经过的完整周期数向上取整推算，保证严格晚于 now（含跨天场景）。
func (s Schedule) NextRun(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	anchor := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, loc)
	if !now.After(anchor) {
		return anchor
	}

	interval := time.Duration(s.IntervalHours) * time.Hour
	elapsed := now.Sub(anchor)
	cycles := elapsed / interval
	if elapsed%interval != 0 {
		cycles++
	}
	return anchor.Add(cycles * interval)
}

// SleepDuration 距下一次执行的休眠时长，下限为 60 秒
func (s Schedule) SleepDuration(now time.Time) time.Duration {
	d := s.NextRun(now).Sub(now)
	if d < minSleep {
		d = minSleep
	}
	return d
}

// Driver 后台刷新驱动循环。实现 kratos transport.Server 接口，
// 随应用一起启停；单轮失败只记录日志并冷却，循环永不退出。
type Driver struct {
	schedule Schedule
	run      func(ctx context.Context) error
	stop     chan struct{}
}

// NewDriver 创建驱动循环，run 为一轮完整的流水线执行
func NewDriver(schedule Schedule, run func(ctx context.Context) error) *Driver {
	return &Driver{
		schedule: schedule,
		run:      run,
		stop:     make(chan struct{}),
	}
}

// Start 进入驱动循环：计算休眠时长、挂起、执行一轮流水线
func (d *Driver) Start(ctx context.Context) error {
	logger.Log.Infof("后台刷新任务已启动: 锚点 %02d:%02d, 间隔 %d 小时",
		d.schedule.Hour, d.schedule.Minute, d.schedule.IntervalHours)

	for {
		sleep := d.schedule.SleepDuration(time.Now())
		logger.Log.Infof("下一次刷新将在 %s 后执行", sleep.Round(time.Second))

		select {
		case <-ctx.Done():
			return nil
		case <-d.stop:
			return nil
		case <-time.After(sleep):
		}

		logger.Log.Info("执行后台刷新...")
		if err := d.run(ctx); err != nil {
			logger.Log.Errorf("后台刷新任务错误: %v", err)
			select {
			case <-ctx.Done():
				return nil
			case <-d.stop:
				return nil
			case <-time.After(errCooldown):
			}
		}
	}
}

// Stop 停止驱动循环
func (d *Driver) Stop(ctx context.Context) error {
	close(d.stop)
	return nil
}
