package syntax

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var unifiedPattern = regexp.MustCompile(`<([^:>]+)(?::([+-]?\d*\.?\d+))?>`)

const (
	neutralEpsilon = 0.01
	maxDepth       = 5
	// minNumericWeight is the floor for remapped negative weights on models
	// that cannot take them.
	minNumericWeight = 0.1
)

// Token is one weighted tag in unified notation.
type Token struct {
	Tag    string
	Weight float64

	// raw is the weight as written, used when Weight overflowed.
	raw string
}

// Neutral reports whether the weight is close enough to 1.0 to need no markup.
func (t Token) Neutral() bool {
	return math.Abs(t.Weight-1.0) < neutralEpsilon
}

// ToFamilyA rewrites unified tokens into bracket notation. Weights above 1
// become {} runs, weights in (0,1) become [] runs, both clamped to 1..5 levels.
// Weights <= 0 have no bracket form and use the deepest [] run.
func ToFamilyA(text string) string {
	return replaceTokens(text, func(t Token) string {
		left, right, depth := bracketsFor(t.Weight)
		return strings.Repeat(left, depth) + t.Tag + strings.Repeat(right, depth)
	})
}

// ToFamilyB rewrites unified tokens into numeric notation. When allowNegative
// is false a negative weight w is emitted as max(0.1, 1+w).
func ToFamilyB(text string, allowNegative bool) string {
	return replaceTokens(text, func(t Token) string {
		weight := t.Weight
		if weight < 0 && !allowNegative {
			weight = math.Max(minNumericWeight, 1+weight)
		}
		if math.IsInf(weight, 0) {
			return t.raw + "::" + t.Tag + " ::"
		}
		return formatWeight(weight) + "::" + t.Tag + " ::"
	})
}

func replaceTokens(text string, emit func(Token) string) string {
	return unifiedPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := unifiedPattern.FindStringSubmatch(match)
		t := Token{Tag: groups[1], Weight: parseWeight(groups[2]), raw: strings.TrimPrefix(groups[2], "+")}
		if t.Neutral() {
			return t.Tag
		}
		return emit(t)
	})
}

// parseWeight treats a missing or unparsable weight as 1.0. A weight too
// large for a float64 comes back as +Inf or -Inf.
func parseWeight(s string) float64 {
	if s == "" {
		return 1.0
	}
	w, err := strconv.ParseFloat(s, 64)
	if errors.Is(err, strconv.ErrRange) && math.IsInf(w, 0) {
		return w
	}
	if err != nil || math.IsNaN(w) {
		return 1.0
	}
	return w
}

func bracketsFor(weight float64) (left, right string, depth int) {
	switch {
	case weight >= 1:
		return "{", "}", clampDepth(math.Log(weight) / math.Log(strengthenStep))
	case weight > 0:
		return "[", "]", clampDepth(math.Log(1/weight) / math.Log(strengthenStep))
	default:
		return "[", "]", maxDepth
	}
}

func clampDepth(levels float64) int {
	levels = math.Round(levels)
	if levels < 1 {
		return 1
	}
	if levels > maxDepth {
		return maxDepth
	}
	return int(levels)
}
