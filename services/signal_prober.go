package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/utils"
	"golang.org/x/time/rate"
)

const proberUserAgent = "vpoint-signal-prober/1.0"

// ProberConfig tunes the reachability checks
type ProberConfig struct {
	RatePerSecond float64
	Timeout       time.Duration
	RetryMax      int
}

// ProbeReport summarises one probing pass
type ProbeReport struct {
	Checked int `json:"checked"`
	Changed int `json:"changed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// SignalProber checks whether signal endpoints answer and records the result
type SignalProber struct {
	signals *SignalService
	client  *retryablehttp.Client
	limiter *rate.Limiter
}

// NewSignalProber creates a prober. Requests are paced by cfg.RatePerSecond.
func NewSignalProber(signals *SignalService, cfg ProberConfig) *SignalProber {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = leveledLogrus{utils.Component("prober")}

	return &SignalProber{
		signals: signals,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
	}
}

// Probeable reports whether a signal takes part in probing. Scheduled
// signals and placeholder URLs are left alone.
func Probeable(sig model.Signal) bool {
	if sig.Status == model.SignalScheduled {
		return false
	}
	u, err := url.Parse(sig.URL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Check performs one request against the signal URL and returns the status
// the signal should have, along with a short description of the outcome.
func (p *SignalProber) Check(ctx context.Context, sig model.Signal) (model.SignalStatus, string) {
	status, err := p.do(ctx, http.MethodHead, sig.URL)
	if err == nil && (status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
		status, err = p.do(ctx, http.MethodGet, sig.URL)
	}
	if err != nil {
		return model.SignalOffline, fmt.Sprintf("(%v)", err)
	}
	if status >= 400 {
		return model.SignalOffline, fmt.Sprintf("(HTTP %d)", status)
	}
	return model.SignalLive, fmt.Sprintf("(HTTP %d)", status)
}

func (p *SignalProber) do(ctx context.Context, method, target string) (int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", proberUserAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-1023")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

// ProbeAll checks every probeable signal once
func (p *SignalProber) ProbeAll(ctx context.Context) (*ProbeReport, error) {
	log := utils.Component("prober")

	signals, err := p.signals.List(ctx, SignalFilter{})
	if err != nil {
		return nil, err
	}

	report := &ProbeReport{}
	for _, sig := range signals {
		if !Probeable(sig) {
			report.Skipped++
			continue
		}
		if err := p.limiter.Wait(ctx); err != nil {
			return report, err
		}

		status, detail := p.Check(ctx, sig)
		report.Checked++

		changed, err := p.signals.RecordProbe(ctx, sig.ID, status, time.Now(), detail)
		if err != nil {
			report.Failed++
			log.WithError(err).WithField("signal", sig.Name).Error("failed to record probe result")
			continue
		}
		if changed {
			report.Changed++
			log.WithFields(logrus.Fields{
				"signal": sig.Name,
				"from":   sig.Status,
				"to":     status,
			}).Info("signal status changed")
		}
	}

	log.WithFields(logrus.Fields{
		"checked": report.Checked,
		"changed": report.Changed,
		"skipped": report.Skipped,
	}).Debug("probe pass finished")
	return report, nil
}

// leveledLogrus adapts a logrus entry to retryablehttp's leveled logger
type leveledLogrus struct {
	entry *logrus.Entry
}

func (l leveledLogrus) fields(kv []interface{}) *logrus.Entry {
	e := l.entry
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.WithField(fmt.Sprint(kv[i]), kv[i+1])
	}
	return e
}

func (l leveledLogrus) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogrus) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogrus) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }
func (l leveledLogrus) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
