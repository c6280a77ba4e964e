// Package syntax converts prompt emphasis between the unified <tag:weight>
// notation and the notations understood by each model family.
//
// Unified:   <tag>, <tag:1.5>, <tag:-1>
// Bracket:   {tag} = x1.05 per level, [tag] = x0.95 per level
// Numeric:   1.5::tag ::
package syntax

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// bracketPattern matches a run of braces or square brackets around a tag
	// that contains no bracket of either kind and no unified token, so only
	// the innermost run of a mixed nesting converts and the output never
	// matches again.
	bracketPattern = regexp.MustCompile(`(\{+)([^{}\[\]<>]+)(\}+)|(\[+)([^{}\[\]<>]+)(\]+)`)

	// numericPattern matches "weight::tag::" with an optional space before the
	// closing separator.
	numericPattern = regexp.MustCompile(`([+-]?\d*\.?\d+)::([^:]+)::`)
)

const (
	strengthenStep = 1.05
	weakenStep     = 0.95
)

// ToUnified rewrites bracket and numeric emphasis into unified notation.
// Text already in unified notation, or in neither notation, is left as is.
// Both passes always run; the bracket pass first.
func ToUnified(text string) string {
	return parseNumeric(parseBrackets(text))
}

func parseBrackets(text string) string {
	return bracketPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := bracketPattern.FindStringSubmatch(match)
		switch {
		case groups[1] != "":
			return unifiedToken(groups[2], formatFixed(math.Pow(strengthenStep, float64(len(groups[1])))))
		case groups[4] != "":
			return unifiedToken(groups[5], formatFixed(math.Pow(weakenStep, float64(len(groups[4])))))
		default:
			return match
		}
	})
}

func parseNumeric(text string) string {
	return numericPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := numericPattern.FindStringSubmatch(match)
		tag := strings.TrimSpace(groups[2])
		weight, err := strconv.ParseFloat(groups[1], 64)
		if errors.Is(err, strconv.ErrRange) {
			// Out of float range: keep the digits, the emitters clamp them.
			return unifiedToken(tag, strings.TrimPrefix(groups[1], "+"))
		}
		if err != nil {
			return match
		}
		return unifiedToken(tag, formatWeight(weight))
	})
}

func unifiedToken(tag, weight string) string {
	return "<" + tag + ":" + weight + ">"
}

// formatFixed prints w with exactly two decimals.
func formatFixed(w float64) string {
	return strconv.FormatFloat(w, 'f', 2, 64)
}

// formatWeight prints w in its shortest decimal form ("1.5", "-1", "0.1").
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
