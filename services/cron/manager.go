package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/auth"
)

// DefaultProbeSchedule runs the signal prober every five minutes
const DefaultProbeSchedule = "0 */5 * * * *"

// Prober is the part of services.SignalProber the scheduler needs
type Prober interface {
	ProbeAll(ctx context.Context) (*services.ProbeReport, error)
}

// TokenCleaner is the part of auth.BlacklistService the scheduler needs
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

var _ TokenCleaner = (*auth.BlacklistService)(nil)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron          *cron.Cron
	prober        Prober
	tokens        TokenCleaner
	probeSchedule string
	log           *logrus.Entry
}

// NewCronManager creates a new cron manager
func NewCronManager(prober Prober, tokens TokenCleaner, probeSchedule string) *CronManager {
	if probeSchedule == "" {
		probeSchedule = DefaultProbeSchedule
	}

	logger := cron.PrintfLogger(utils.Log)
	// Create cron with seconds precision; a slow probe pass never overlaps the next one
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	return &CronManager{
		cron:          c,
		prober:        prober,
		tokens:        tokens,
		probeSchedule: probeSchedule,
		log:           utils.Component("cron"),
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	m.log.Info("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	m.log.Info("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	m.log.Info("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.log.Info("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// 1. Signal reachability
	if m.prober != nil {
		if _, err := m.cron.AddFunc(m.probeSchedule, func() {
			m.logJobStart("probe_signals")
			m.ProbeSignals()
		}); err != nil {
			return err
		}
	}

	// 2. Daily at 2 AM: drop expired blacklist rows
	if m.tokens != nil {
		if _, err := m.cron.AddFunc("0 0 2 * * *", func() {
			m.logJobStart("cleanup_token_blacklist")
			m.CleanupTokenBlacklist()
		}); err != nil {
			return err
		}
	}

	m.log.WithField("jobs", len(m.cron.Entries())).Info("All cron jobs registered successfully")
	return nil
}

func (m *CronManager) logJobStart(jobName string) {
	m.log.WithFields(logrus.Fields{
		"job":     jobName,
		"started": time.Now().Format(time.RFC3339),
	}).Debug("starting job")
}

func (m *CronManager) logJobComplete(jobName string, fields logrus.Fields) {
	m.log.WithField("job", jobName).WithFields(fields).Info("job completed")
}

func (m *CronManager) logJobError(jobName string, err error) {
	m.log.WithField("job", jobName).WithError(err).Error("job failed")
}
