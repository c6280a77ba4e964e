package models

// Family is the emphasis notation a model understands.
type Family int

const (
	// FamilyA is the legacy bracket notation: {tag} strengthens, [tag] weakens.
	FamilyA Family = iota
	// FamilyBv1 is the numeric-prefix notation without negative weights.
	FamilyBv1
	// FamilyBv2 is the numeric-prefix notation with negative weights.
	FamilyBv2
)

func (f Family) String() string {
	switch f {
	case FamilyA:
		return "bracket"
	case FamilyBv1:
		return "numeric"
	case FamilyBv2:
		return "numeric-negative"
	default:
		return "unknown"
	}
}

// Numeric reports whether the family uses "weight::tag ::" syntax.
func (f Family) Numeric() bool {
	return f == FamilyBv1 || f == FamilyBv2
}

// AllowsNegative reports whether negative weights can be emitted as-is.
func (f Family) AllowsNegative() bool {
	return f == FamilyBv2
}

// FamilyOf classifies a model identifier. Unknown identifiers fall back to
// the legacy family.
func FamilyOf(id string) Family {
	switch ID(id) {
	case V45Full, V45Curated:
		return FamilyBv2
	case V4Full, V4Curated:
		return FamilyBv1
	case V3Anime, V3Furry:
		return FamilyA
	default:
		return FamilyA
	}
}
