package handlers

import (
	"math/rand"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Hints appends an occasional syntax tip to replies, at most once per
// cooldown window per guild.
type Hints struct {
	cooldowns   map[string]time.Time // guildID -> last hint time
	cooldownMu  sync.RWMutex
	cooldownDur time.Duration
	hintChance  float32
	hints       []string
	now         func() time.Time
}

func NewHints() *Hints {
	return &Hints{
		cooldowns:   make(map[string]time.Time),
		cooldownDur: 5 * time.Minute,
		hintChance:  0.15,
		hints: []string{
			"Pro tip: <tag:1.3> works on every model, it is converted for you",
			"Pro tip: V4.5 models accept negative weights like <text:-1>",
			"Pro tip: /convert shows how a prompt will be sent to a given model",
			"Pro tip: {tag}, [tag] and 1.1::tag :: are all understood in prompts",
			"Pro tip: pick a preset in /draw to add quality and negative tags",
			"Pro tip: weights near 1.0, like <tag:1.005>, are sent as plain tags",
			"Pro tip: the negative option is merged after the preset's negative tags",
		},
		now: time.Now,
	}
}

// ShouldShowHint rolls the hint chance and checks the guild cooldown.
func (h *Hints) ShouldShowHint(guildID string) (string, bool) {
	if len(h.hints) == 0 || rand.Float32() > h.hintChance {
		return "", false
	}

	h.cooldownMu.Lock()
	defer h.cooldownMu.Unlock()

	if last, ok := h.cooldowns[guildID]; ok && h.now().Sub(last) < h.cooldownDur {
		return "", false
	}

	hint := h.hints[rand.Intn(len(h.hints))]
	h.cooldowns[guildID] = h.now()

	log.WithFields(log.Fields{"module": "handlers", "guild_id": guildID}).Debugf("Showing hint: %s", hint)
	return hint, true
}

// ShowIfApplicable returns a formatted hint suffix, or "".
func (h *Hints) ShowIfApplicable(guildID string) string {
	if hint, ok := h.ShouldShowHint(guildID); ok {
		return "\n\n💡 " + hint
	}
	return ""
}
