package preset

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"whitespace_only", "  \n\t ", ""},
		{"messy_commas_and_newlines", "tag1,\n tag2 ,,tag3\r", "tag1, tag2, tag3"},
		{"crlf_lines", "masterpiece\r\nbest quality\r\n", "masterpiece, best quality"},
		{"brackets_to_unified", "{best quality}, [[lowres]]", "<best quality:1.05>, <lowres:0.90>"},
		{"numeric_to_unified", "1.5::red eyes ::,\n-1::text::", "<red eyes:1.5>, <text:-1>"},
		{"already_canonical", "a, b, <c:1.2>", "a, b, <c:1.2>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIsStable(t *testing.T) {
	raw := " {a},\n[b]\r, 0.7::c ::,, d "
	once := Normalize(raw)
	assert.Equal(t, once, Normalize(once))
}

func TestValidateID(t *testing.T) {
	valid := []string{"anime", "my-preset_2", " padded ", strings.Repeat("a", 64)}
	for _, id := range valid {
		assert.NoError(t, ValidateID(id), id)
	}
	invalid := []string{"", "   ", "has space", "emoji🎨", "dot.id", strings.Repeat("a", 65)}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateID(id), ErrInvalidID, id)
	}
}

type memoryStore struct {
	presets map[string]Preset
	gets    int
	failGet bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{presets: make(map[string]Preset)}
}

func (m *memoryStore) GetPreset(id string) (*Preset, error) {
	m.gets++
	if m.failGet {
		return nil, errors.New("boom")
	}
	p, ok := m.presets[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryStore) ListPresets(limit int) ([]Summary, error) {
	var out []Summary
	for _, p := range m.presets {
		out = append(out, Summary{ID: p.ID, Name: p.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) SearchPresets(query string, limit int) ([]Summary, error) {
	all, _ := m.ListPresets(len(m.presets))
	var out []Summary
	for _, s := range all {
		if strings.Contains(s.ID, query) || strings.Contains(s.Name, query) {
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) UpsertPreset(p Preset) (*Preset, error) {
	m.presets[p.ID] = p
	return &p, nil
}

func (m *memoryStore) DeletePreset(id string) (bool, error) {
	_, ok := m.presets[id]
	delete(m.presets, id)
	return ok, nil
}

func TestServiceUpsertNormalizes(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	p, err := svc.Upsert(Input{
		ID:           " furry ",
		Name:         "  Furry ",
		Description:  " furry style\n",
		QualityTags:  "{best quality},\n{amazing quality}",
		NegativeTags: "lowres,, human\r",
	})
	require.NoError(t, err)

	want := Preset{
		ID:           "furry",
		Name:         "Furry",
		Description:  "furry style",
		QualityTags:  "<best quality:1.05>, <amazing quality:1.05>",
		NegativeTags: "lowres, human",
	}
	assert.Equal(t, want, *p)
	assert.Equal(t, want, store.presets["furry"])
}

func TestServiceUpsertRejectsBadInput(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Upsert(Input{ID: "bad id", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = svc.Upsert(Input{ID: "ok", Name: "   "})
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestServiceUpsertReplacesAllFields(t *testing.T) {
	svc := NewService(newMemoryStore())

	_, err := svc.Upsert(Input{ID: "p", Name: "One", QualityTags: "a", NegativeTags: "b"})
	require.NoError(t, err)
	_, err = svc.Upsert(Input{ID: "p", Name: "Two"})
	require.NoError(t, err)

	got, err := svc.Get("p")
	require.NoError(t, err)
	assert.Equal(t, Preset{ID: "p", Name: "Two"}, *got)
}

func TestServiceGetCachesAndInvalidates(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	_, err := svc.Upsert(Input{ID: "anime", Name: "Anime"})
	require.NoError(t, err)

	_, err = svc.Get("anime")
	require.NoError(t, err)
	_, err = svc.Get("anime")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)

	deleted, err := svc.Delete("anime")
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := svc.Get("anime")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, store.gets)
}

func TestServiceGetMissingIsNotCached(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)

	got, err := svc.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, got)

	store.presets["nope"] = Preset{ID: "nope", Name: "Now here"}
	got, err = svc.Get("nope")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Now here", got.Name)
}

func TestServiceGetWrapsStoreErrors(t *testing.T) {
	store := newMemoryStore()
	store.failGet = true
	_, err := NewService(store).Get("x")
	assert.ErrorContains(t, err, "failed to get preset x")
}

func TestServiceListClampsLimit(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store)
	for i := 0; i < 30; i++ {
		id := "p" + strings.Repeat("x", i)
		store.presets[id] = Preset{ID: id, Name: id}
	}

	items, err := svc.List(0)
	require.NoError(t, err)
	assert.Len(t, items, DefaultLimit)

	items, err = svc.Search("p", 100)
	require.NoError(t, err)
	assert.Len(t, items, DefaultLimit)

	items, err = svc.List(3)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestServiceDeleteMissing(t *testing.T) {
	deleted, err := NewService(newMemoryStore()).Delete("ghost")
	require.NoError(t, err)
	assert.False(t, deleted)
}
