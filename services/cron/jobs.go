package cron

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// ProbeSignals checks every probeable signal once
func (m *CronManager) ProbeSignals() {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	jobName := "probe_signals"

	report, err := m.prober.ProbeAll(ctx)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, logrus.Fields{
		"checked": report.Checked,
		"changed": report.Changed,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	})
}

// CleanupTokenBlacklist removes revoked tokens that have expired anyway
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	jobName := "cleanup_token_blacklist"

	removed, err := m.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		m.logJobError(jobName, err)
		return
	}

	m.logJobComplete(jobName, logrus.Fields{"removed": removed})
}
