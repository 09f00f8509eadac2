package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"pgchart/internal/alert"
	"pgchart/internal/collector"
	"pgchart/internal/metrics"
	"pgchart/internal/notifier"
	"pgchart/internal/store"
	"pgchart/internal/view"
)

// historyLimit is how many daily candles a /history reply shows.
const historyLimit = 7

// Sender delivers a notification.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// SwingConfig configures the swing warning job.
type SwingConfig struct {
	Window    time.Duration
	Threshold float64
}

// Scheduler manages all cron tasks and answers chat commands.
type Scheduler struct {
	Cron       *cron.Cron
	Controller *view.Controller
	Store      store.Store
	Upstream   collector.Source // nil when the store is the only source
	Guard      *alert.Guard
	Notifier   Sender
	Swing      SwingConfig
	Loc        *time.Location
	Ctx        context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, ctrl *view.Controller, st store.Store, upstream collector.Source,
	guard *alert.Guard, sender Sender, swing SwingConfig, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Controller: ctrl,
		Store:      st,
		Upstream:   upstream,
		Guard:      guard,
		Notifier:   sender,
		Swing:      swing,
		Loc:        loc,
		Ctx:        ctx,
		now:        time.Now,
	}
}

// RegisterAll registers the sync, swing and report tasks.
func (s *Scheduler) RegisterAll(syncCron, swingCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(syncCron, s.syncTask); err != nil {
		return fmt.Errorf("register sync task: %w", err)
	}
	if _, err := s.Cron.AddFunc(swingCron, s.swingTask); err != nil {
		return fmt.Errorf("register swing task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// SyncNow pulls today's ticks from the upstream source into the store.
func (s *Scheduler) SyncNow() (int, error) {
	if s.Upstream == nil {
		return 0, nil
	}
	start, end := view.DayOf(s.now().In(s.Loc)).Bounds()
	ticks, err := s.Upstream.FetchTicks(s.Ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("fetch from %s: %w", s.Upstream.Name(), err)
	}
	n, err := s.Store.SaveTicks(s.Ctx, ticks)
	if err != nil {
		return 0, fmt.Errorf("save ticks: %w", err)
	}
	return n, nil
}

func (s *Scheduler) syncTask() {
	n, err := s.SyncNow()
	if err != nil {
		log.Error().Err(err).Msg("sync failed")
		return
	}
	if n > 0 {
		log.Debug().Int("inserted", n).Msg("synced ticks")
	}
}

// CheckSwing evaluates the recent window and sends a warning when the
// guard allows it. It reports whether a warning was sent.
func (s *Scheduler) CheckSwing() (bool, error) {
	now := s.now()
	from := now.Add(-s.Swing.Window).Unix()
	ticks, err := s.Store.FetchTicks(s.Ctx, from, now.Unix())
	if err != nil {
		return false, fmt.Errorf("fetch window: %w", err)
	}
	swing, ok := alert.Evaluate(ticks, now, s.Swing.Window, s.Swing.Threshold)
	if !ok || !swing.Triggered {
		return false, nil
	}
	if !s.Guard.Allow(now) {
		log.Debug().Float64("high", swing.High).Float64("low", swing.Low).Msg("swing suppressed by cooldown")
		return false, nil
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, notifier.FormatSwing(swing), 3); err != nil {
		return false, fmt.Errorf("send swing warning: %w", err)
	}
	s.Guard.Mark(now)
	metrics.SwingAlerts.Inc()
	log.Info().Float64("current", swing.Current).Float64("high", swing.High).Float64("low", swing.Low).Msg("swing warning sent")
	return true, nil
}

func (s *Scheduler) swingTask() {
	if _, err := s.CheckSwing(); err != nil {
		log.Error().Err(err).Msg("swing check failed")
	}
}

// RunReportNow sends today's tick chart summary.
func (s *Scheduler) RunReportNow() {
	s.reportTask()
}

func (s *Scheduler) reportTask() {
	day := view.DayOf(s.now().In(s.Loc))
	log.Info().Str("day", day.String()).Msg("running daily report")

	// A separate controller keeps the chat view state untouched.
	ctrl := view.NewController(s.Store, s.Controller.Options(), s.Loc)
	ctrl.SelectDay(day)
	snap, err := ctrl.Refresh(s.Ctx)
	if err != nil {
		log.Error().Err(err).Str("day", day.String()).Msg("daily report")
		return
	}
	s.trySend(renderSnapshot(snap))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/tick", "分时":
		if len(fields) > 1 {
			if _, err := s.Controller.SelectDate(fields[1]); err != nil {
				return fmt.Sprintf("❌ 日期格式错误: %s (示例: 2024-03-01)", fields[1])
			}
		} else {
			s.Controller.SelectDay(view.DayOf(s.now().In(s.Loc)))
		}
		s.Controller.SetMode(view.TickView)
		return s.refresh()
	case "/history", "日K":
		s.Controller.SetMode(view.HistoryView)
		return s.refresh()
	case "/toggle", "切换":
		s.Controller.Toggle()
		return s.refresh()
	case "/status", "状态":
		return notifier.FormatStatus(s.status())
	default:
		return helpText
	}
}

const helpText = "可用命令:\n• /tick [日期] 分时图\n• /history 日K\n• /toggle 切换视图\n• /status 运行状态"

func (s *Scheduler) refresh() string {
	snap, err := s.Controller.Refresh(s.Ctx)
	if errors.Is(err, view.ErrStale) {
		return ""
	}
	if err != nil {
		log.Error().Err(err).Msg("refresh view")
		return fmt.Sprintf("❌ 获取数据失败: %v", err)
	}
	return renderSnapshot(snap)
}

func renderSnapshot(snap *view.Snapshot) string {
	switch {
	case snap.Empty:
		return notifier.FormatNoData(snap.Mode.String(), snap.Day.String())
	case snap.Tick != nil:
		return notifier.FormatTickChart(snap.Tick)
	case snap.History != nil:
		return notifier.FormatHistory(snap.History, historyLimit)
	default:
		return notifier.FormatNoData(snap.Mode.String(), snap.Day.String())
	}
}

func (s *Scheduler) status() notifier.Status {
	st := notifier.Status{
		Mode:   s.Controller.Mode().String(),
		Day:    s.Controller.Day().String(),
		Source: s.Store.Name(),
	}
	if s.Upstream != nil {
		st.Source = fmt.Sprintf("%s ← %s", s.Store.Name(), s.Upstream.Name())
	}
	if n, err := s.Store.Count(s.Ctx); err == nil {
		st.Ticks = n
	} else {
		log.Warn().Err(err).Msg("count ticks")
	}
	if latest, ok, err := s.Store.Latest(s.Ctx); err == nil && ok {
		st.Latest = &latest
	}
	if s.Guard != nil {
		gs := s.Guard.State()
		st.LastAlertAt = gs.LastAlertAt
		st.AlertCount = gs.AlertCount
	}
	return st
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
