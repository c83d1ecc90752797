package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/vpoint-tv/vpoint-api/services"
)

type fakeProber struct {
	calls int
	err   error
}

func (f *fakeProber) ProbeAll(ctx context.Context) (*services.ProbeReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &services.ProbeReport{Checked: 2, Changed: 1}, nil
}

type fakeCleaner struct {
	calls int
}

func (f *fakeCleaner) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

func TestRegisterJobs(t *testing.T) {
	m := NewCronManager(&fakeProber{}, &fakeCleaner{}, "")
	if err := m.registerJobs(); err != nil {
		t.Fatalf("registerJobs failed: %v", err)
	}
	if got := len(m.cron.Entries()); got != 2 {
		t.Fatalf("expected 2 jobs, got %d", got)
	}
}

func TestRegisterJobsRejectsBadSchedule(t *testing.T) {
	m := NewCronManager(&fakeProber{}, nil, "not a schedule")
	if err := m.registerJobs(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestJobsCallDependencies(t *testing.T) {
	prober := &fakeProber{}
	cleaner := &fakeCleaner{}
	m := NewCronManager(prober, cleaner, "")

	m.ProbeSignals()
	m.CleanupTokenBlacklist()

	if prober.calls != 1 || cleaner.calls != 1 {
		t.Fatalf("expected one call each, got prober=%d cleaner=%d", prober.calls, cleaner.calls)
	}

	prober.err = errors.New("boom")
	m.ProbeSignals()
	if prober.calls != 2 {
		t.Fatalf("expected prober to be called again, got %d", prober.calls)
	}
}
