package preset

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// DefaultLimit caps listings; it matches Discord's autocomplete choice limit.
const DefaultLimit = 25

// Store persists presets. Implementations store exactly what they are given.
type Store interface {
	GetPreset(id string) (*Preset, error)
	ListPresets(limit int) ([]Summary, error)
	SearchPresets(query string, limit int) ([]Summary, error)
	UpsertPreset(p Preset) (*Preset, error)
	DeletePreset(id string) (bool, error)
}

// Service is the only write path for presets and applies Normalize on every
// write. Reads go through a short-lived cache.
type Service struct {
	store Store
	cache *cache.Cache
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Get returns the preset with id, or nil when none exists.
func (s *Service) Get(id string) (*Preset, error) {
	id = strings.TrimSpace(id)
	if cached, ok := s.cache.Get(id); ok {
		p := cached.(Preset)
		return &p, nil
	}

	p, err := s.store.GetPreset(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get preset %s: %w", id, err)
	}
	if p == nil {
		return nil, nil
	}
	s.cache.SetDefault(id, *p)
	return p, nil
}

func (s *Service) List(limit int) ([]Summary, error) {
	return s.store.ListPresets(clampLimit(limit))
}

// Search returns up to limit summaries; an empty query lists by name.
func (s *Service) Search(query string, limit int) ([]Summary, error) {
	return s.store.SearchPresets(query, clampLimit(limit))
}

// Upsert validates and normalizes in, then replaces the stored preset.
func (s *Service) Upsert(in Input) (*Preset, error) {
	if err := ValidateID(in.ID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	p := Preset{
		ID:           strings.TrimSpace(in.ID),
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		QualityTags:  Normalize(in.QualityTags),
		NegativeTags: Normalize(in.NegativeTags),
	}

	stored, err := s.store.UpsertPreset(p)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(p.ID)

	log.WithFields(log.Fields{
		"module":   "preset",
		"presetID": stored.ID,
	}).Info("Preset saved")
	return stored, nil
}

// Delete removes a preset and reports whether it existed.
func (s *Service) Delete(id string) (bool, error) {
	id = strings.TrimSpace(id)
	deleted, err := s.store.DeletePreset(id)
	if err != nil {
		return false, err
	}
	s.cache.Delete(id)
	return deleted, nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > DefaultLimit {
		return DefaultLimit
	}
	return limit
}
