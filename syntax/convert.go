package syntax

import "nullscape/models"

// AutoConvert normalizes text of unknown origin to unified notation and then
// emits it in the notation of targetModel.
func AutoConvert(text, targetModel string) string {
	return Emit(ToUnified(text), models.FamilyOf(targetModel))
}

// Emit writes unified text in the notation of the given family.
func Emit(unified string, family models.Family) string {
	if family.Numeric() {
		return ToFamilyB(unified, family.AllowsNegative())
	}
	return ToFamilyA(unified)
}
