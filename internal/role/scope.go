package role

import "strings"

type GenderScope string

const (
	ScopeBoys  GenderScope = "boys"
	ScopeGirls GenderScope = "girls"
	ScopeBoth  GenderScope = "both"
)

func (g GenderScope) Valid() bool {
	return g == ScopeBoys || g == ScopeGirls || g == ScopeBoth
}

// DefaultGenderScope derives the scope assigned when an account is created.
func DefaultGenderScope(r Role) GenderScope {
	switch r {
	case DeputyWardenBoys, ResidentialCounsellorBoys:
		return ScopeBoys
	case DeputyWardenGirls, ResidentialCounsellorGirls:
		return ScopeGirls
	default:
		return ScopeBoth
	}
}

// Gendered reports whether the role fixes its own scope.
func Gendered(r Role) bool {
	return DefaultGenderScope(r) != ScopeBoth
}

// NormalizeTargetGender folds student genders and hostel genders onto a scope.
// Empty input yields an empty scope.
func NormalizeTargetGender(s string) GenderScope {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "boys", "boy":
		return ScopeBoys
	case "female", "transgender", "girls", "girl":
		return ScopeGirls
	case "":
		return ""
	default:
		return GenderScope(strings.ToLower(s))
	}
}

// Covers reports whether a holder of scope g may act on target.
func (g GenderScope) Covers(target GenderScope) bool {
	return target == "" || g == ScopeBoth || g == target
}
