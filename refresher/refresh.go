package refresher

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/hq_backend/config"
	"bitbucket.org/mmdatafocus/hq_backend/models"
	"bitbucket.org/mmdatafocus/hq_backend/models/reports"
	"bitbucket.org/mmdatafocus/hq_backend/salessync"
)

// DefaultMinuteMarks are the wall-clock minutes the refresher fires at. The
// upstream extract lands on the half hour, the offset plus buffer lets it
// finish first.
var DefaultMinuteMarks = []int{5, 35}

const DefaultBuffer = 2 * time.Second

// NextRefreshDelay computes how long to wait from now until the next minute
// mark plus buffer. The result is clamped to at least one second so a tick
// landing exactly on a mark cannot busy-loop.
func NextRefreshDelay(now time.Time, minuteMarks []int, buffer time.Duration) time.Duration {
	if len(minuteMarks) == 0 {
		minuteMarks = DefaultMinuteMarks
	}
	marks := make([]int, len(minuteMarks))
	copy(marks, minuteMarks)
	sort.Ints(marks)

	topOfHour := now.Truncate(time.Hour)
	var next time.Time
	for _, mark := range marks {
		candidate := topOfHour.Add(time.Duration(mark)*time.Minute + buffer)
		if candidate.After(now) {
			next = candidate
			break
		}
	}
	if next.IsZero() {
		next = topOfHour.Add(time.Hour + time.Duration(marks[0])*time.Minute + buffer)
	}

	delay := next.Sub(now)
	if delay < time.Second {
		delay = time.Second
	}
	return delay
}

// Refresher periodically re-primes the performance read model, and
// optionally re-runs the sales sync first. Refreshes are serialized: the
// next timer is armed only after the current refresh finishes, so a slow
// refresh can never overlap itself.
type Refresher struct {
	minuteMarks []int
	buffer      time.Duration
	cancel      context.CancelFunc
	done        chan struct{}
}

func New() *Refresher {
	return &Refresher{
		minuteMarks: minuteMarksFromEnv(),
		buffer:      DefaultBuffer,
	}
}

func (r *Refresher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx)
}

func (r *Refresher) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Refresher) loop(ctx context.Context) {
	defer close(r.done)

	logger := config.GetLogger()
	for {
		delay := NextRefreshDelay(time.Now(), r.minuteMarks, r.buffer)
		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		started := time.Now()
		if err := r.refreshOnce(ctx); err != nil {
			config.LogError(logger, "refresher", "loop", "refresh", nil, err)
		} else {
			logger.WithField("duration_ms", time.Since(started).Milliseconds()).Debug("refresh finished")
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) error {
	if autoSyncEnabled() {
		run, err := salessync.CreateSyncRun(ctx, "", models.SyncTriggeredSchedule, nil)
		if err != nil {
			return err
		}
		if _, err := salessync.RunSyncNow(ctx, run); err != nil && err != salessync.ErrSyncInProgress {
			return err
		}
	}

	// Re-prime the dashboard reads so the next poll hits warm caches.
	if _, err := reports.GetTodayPerformance(ctx, ""); err != nil {
		return err
	}
	if _, err := reports.GetStoreLeaderboard(ctx); err != nil {
		return err
	}
	if _, err := reports.GetSalesmanPerformance(ctx, ""); err != nil {
		return err
	}
	return nil
}

func autoSyncEnabled() bool {
	return salessync.EnvBoolDefault("REFRESH_AUTO_SYNC", false)
}

func minuteMarksFromEnv() []int {
	// Env: REFRESH_MINUTE_MARKS, comma separated (default "5,35")
	raw := strings.TrimSpace(os.Getenv("REFRESH_MINUTE_MARKS"))
	if raw == "" {
		return DefaultMinuteMarks
	}

	var marks []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 59 {
			continue
		}
		marks = append(marks, n)
	}
	if len(marks) == 0 {
		return DefaultMinuteMarks
	}
	sort.Ints(marks)
	return marks
}
