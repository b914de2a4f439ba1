package ingest

import (
	"time"

	"github.com/notesink/notesink/internal/common"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// janitor periodically sweeps terminal items that have outlived their
// usefulness, keeping the in-memory queue bounded on long-running instances.
type janitor struct {
	svc    *Service
	cron   *cron.Cron
	maxAge time.Duration
	logger arbor.ILogger
}

func newJanitor(svc *Service, cfg common.JanitorConfig, logger arbor.ILogger) *janitor {
	j := &janitor{
		svc:    svc,
		cron:   cron.New(),
		maxAge: common.Duration(cfg.MaxAge, time.Hour),
		logger: logger,
	}

	if _, err := j.cron.AddFunc(cfg.Schedule, j.sweep); err != nil {
		// Schedule was validated at config load; fall back to a sane default.
		logger.Warn().Err(err).Str("schedule", cfg.Schedule).Msg("Invalid janitor schedule, using @every 10m")
		j.cron.AddFunc("@every 10m", j.sweep)
	}

	return j
}

func (j *janitor) Start() {
	j.cron.Start()
	j.logger.Info().Str("max_age", j.maxAge.String()).Msg("Queue janitor started")
}

func (j *janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *janitor) sweep() {
	removed := j.svc.store.ClearOlderThan(j.maxAge)
	if removed > 0 {
		j.logger.Info().Int("removed", removed).Msg("Swept stale queue items")
		j.svc.publishQueueChanged()
	}
}
