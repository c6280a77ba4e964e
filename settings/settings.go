// Package settings holds the runtime-adjustable bot settings. Values live in
// the settings table; a Provider keeps a snapshot in memory and writes
// changes through to the store.
package settings

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const (
	KeyRateLimitPerMin = "rate_limit_per_min"
	KeyLimitMode       = "novelai_limit_mode"
)

// Store persists raw setting strings.
type Store interface {
	AllSettings() (map[string]string, error)
	SetSetting(key, value string) error
}

// Defaults come from the environment and apply when nothing valid is stored.
type Defaults struct {
	RateLimitPerMin int
	LimitMode       bool
}

// Snapshot is a copy of the current settings.
type Snapshot struct {
	RateLimitPerMin int
	LimitMode       bool
}

type Provider struct {
	store    Store
	defaults Defaults

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewProvider loads the settings from store, seeding missing keys with the
// defaults.
func NewProvider(store Store, defaults Defaults) (*Provider, error) {
	if defaults.RateLimitPerMin <= 0 {
		defaults.RateLimitPerMin = 1
	}
	p := &Provider{store: store, defaults: defaults}
	if err := p.Load(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load rereads the store and replaces the snapshot.
func (p *Provider) Load() error {
	logger := log.WithFields(log.Fields{
		"module": "settings",
		"method": "Load",
	})

	snapshot := Snapshot{
		RateLimitPerMin: p.defaults.RateLimitPerMin,
		LimitMode:       p.defaults.LimitMode,
	}

	stored, err := p.store.AllSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	if storedRate, ok := stored[KeyRateLimitPerMin]; ok {
		if rate, err := strconv.Atoi(strings.TrimSpace(storedRate)); err == nil && rate > 0 {
			snapshot.RateLimitPerMin = rate
		} else {
			logger.Warnf("ignoring invalid stored %s %q", KeyRateLimitPerMin, storedRate)
		}
	} else if err := p.store.SetSetting(KeyRateLimitPerMin, strconv.Itoa(snapshot.RateLimitPerMin)); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	if storedMode, ok := stored[KeyLimitMode]; ok {
		snapshot.LimitMode = ParseBool(storedMode, p.defaults.LimitMode)
	} else if err := p.store.SetSetting(KeyLimitMode, formatBool(snapshot.LimitMode)); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	p.mu.Lock()
	p.snapshot = snapshot
	p.mu.Unlock()

	logger.WithFields(log.Fields{
		"rateLimitPerMin": snapshot.RateLimitPerMin,
		"limitMode":       snapshot.LimitMode,
	}).Info("Runtime settings loaded")
	return nil
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}

func (p *Provider) RateLimitPerMin() int {
	return p.Snapshot().RateLimitPerMin
}

func (p *Provider) LimitMode() bool {
	return p.Snapshot().LimitMode
}

// SetRateLimitPerMin stores a new per-minute limit. Values below 1 become 1.
func (p *Provider) SetRateLimitPerMin(value int) (Snapshot, error) {
	if value <= 0 {
		value = 1
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.SetSetting(KeyRateLimitPerMin, strconv.Itoa(value)); err != nil {
		return p.snapshot, fmt.Errorf("failed to update rate limit: %w", err)
	}
	p.snapshot.RateLimitPerMin = value

	log.WithField("rateLimitPerMin", value).Info("Rate limit updated")
	return p.snapshot, nil
}

func (p *Provider) SetLimitMode(enabled bool) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.SetSetting(KeyLimitMode, formatBool(enabled)); err != nil {
		return p.snapshot, fmt.Errorf("failed to update limit mode: %w", err)
	}
	p.snapshot.LimitMode = enabled

	log.WithField("limitMode", enabled).Info("Limit mode updated")
	return p.snapshot, nil
}

// ParseBool accepts 1/true/yes/on and 0/false/no/off, case-insensitively.
// Anything else yields fallback.
func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
