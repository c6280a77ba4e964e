package settings

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapStore struct {
	mu      sync.Mutex
	values  map[string]string
	failSet bool
}

func newMapStore(values map[string]string) *mapStore {
	if values == nil {
		values = make(map[string]string)
	}
	return &mapStore{values: values}
}

func (m *mapStore) AllSettings() (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *mapStore) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errors.New("disk full")
	}
	m.values[key] = value
	return nil
}

func TestNewProviderSeedsDefaults(t *testing.T) {
	store := newMapStore(nil)
	p, err := NewProvider(store, Defaults{RateLimitPerMin: 3, LimitMode: true})
	require.NoError(t, err)

	assert.Equal(t, Snapshot{RateLimitPerMin: 3, LimitMode: true}, p.Snapshot())
	assert.Equal(t, "3", store.values[KeyRateLimitPerMin])
	assert.Equal(t, "1", store.values[KeyLimitMode])
}

func TestNewProviderPrefersStoredValues(t *testing.T) {
	store := newMapStore(map[string]string{
		KeyRateLimitPerMin: "12",
		KeyLimitMode:       "off",
	})
	p, err := NewProvider(store, Defaults{RateLimitPerMin: 3, LimitMode: true})
	require.NoError(t, err)

	assert.Equal(t, 12, p.RateLimitPerMin())
	assert.False(t, p.LimitMode())
}

func TestNewProviderIgnoresInvalidStoredValues(t *testing.T) {
	tests := []struct {
		name     string
		rate     string
		mode     string
		wantRate int
		wantMode bool
	}{
		{"zero_rate", "0", "maybe", 3, true},
		{"negative_rate", "-5", "", 3, true},
		{"garbage_rate", "abc", "YES", 3, true},
		{"valid", "9", "false", 9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMapStore(map[string]string{
				KeyRateLimitPerMin: tt.rate,
				KeyLimitMode:       tt.mode,
			})
			p, err := NewProvider(store, Defaults{RateLimitPerMin: 3, LimitMode: true})
			require.NoError(t, err)
			assert.Equal(t, tt.wantRate, p.RateLimitPerMin())
			assert.Equal(t, tt.wantMode, p.LimitMode())
		})
	}
}

func TestSetRateLimitPerMinWritesThrough(t *testing.T) {
	store := newMapStore(nil)
	p, err := NewProvider(store, Defaults{RateLimitPerMin: 3})
	require.NoError(t, err)

	snap, err := p.SetRateLimitPerMin(10)
	require.NoError(t, err)
	assert.Equal(t, 10, snap.RateLimitPerMin)
	assert.Equal(t, "10", store.values[KeyRateLimitPerMin])

	snap, err = p.SetRateLimitPerMin(0)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RateLimitPerMin)
	assert.Equal(t, 1, p.RateLimitPerMin())
}

func TestSetLimitModeWritesThrough(t *testing.T) {
	store := newMapStore(nil)
	p, err := NewProvider(store, Defaults{RateLimitPerMin: 3})
	require.NoError(t, err)

	snap, err := p.SetLimitMode(true)
	require.NoError(t, err)
	assert.True(t, snap.LimitMode)
	assert.Equal(t, "1", store.values[KeyLimitMode])
}

func TestSetterKeepsSnapshotOnStoreFailure(t *testing.T) {
	store := newMapStore(nil)
	p, err := NewProvider(store, Defaults{RateLimitPerMin: 3})
	require.NoError(t, err)

	store.failSet = true
	snap, err := p.SetRateLimitPerMin(20)
	assert.Error(t, err)
	assert.Equal(t, 3, snap.RateLimitPerMin)
	assert.Equal(t, 3, p.RateLimitPerMin())
}

func TestProviderConcurrentAccess(t *testing.T) {
	p, err := NewProvider(newMapStore(nil), Defaults{RateLimitPerMin: 3})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			_, _ = p.SetRateLimitPerMin(v)
		}(i)
		go func() {
			defer wg.Done()
			_ = p.Snapshot()
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, p.RateLimitPerMin(), 1)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in       string
		fallback bool
		want     bool
	}{
		{"1", false, true},
		{" TRUE ", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"0", true, false},
		{"False", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseBool(tt.in, tt.fallback), tt.in)
	}
}
