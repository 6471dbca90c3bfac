package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"shopreg/config"
	"shopreg/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:    4,
			TokenTTL:      30 * time.Minute,
			RememberMeTTL: 7 * 24 * time.Hour,
		},
	}
	cfg.SecretKey.Access = "test_access_secret_key_very_long_for_testing"

	return cfg
}

// recordingMetrics captures outcomes in call order.
type recordingMetrics struct {
	mu      sync.Mutex
	signups []string
	signins []string
}

func (m *recordingMetrics) ObserveSignup(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signups = append(m.signups, outcome)
}

func (m *recordingMetrics) ObserveSignin(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signins = append(m.signins, outcome)
}

// recordingPublisher captures published events and optionally fails.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*service.AccountEvent
	err    error
}

func (p *recordingPublisher) PublishAccountEvent(_ context.Context, event *service.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return p.err
}

func (p *recordingPublisher) Close() error {
	return nil
}
