package roster

import (
	"strings"

	"github.com/opskitchen/shiftboard/internal/domain/model"
)

// minFirstNameLen guards the first-name predicate against initials and
// very short names matching too eagerly.
const minFirstNameLen = 3

// NamePredicate is a single fuzzy name-matching strategy. Predicates are
// evaluated in a fixed priority order; the first success wins.
type NamePredicate struct {
	Name  string
	Match func(a, b string) bool
}

// NamePredicates returns the ordered fuzzy-matching strategies.
func NamePredicates() []NamePredicate {
	return []NamePredicate{
		{"exact-full-name", EqualFullName},
		{"first-name", EqualFirstName},
		{"short-form", ShortFormMatch},
		{"containment", ContainsEither},
	}
}

// EqualFullName reports case-insensitive full-name equality.
func EqualFullName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// EqualFirstName reports case-insensitive first-name equality, but only
// when the first name is long enough to be meaningful.
func EqualFirstName(a, b string) bool {
	firstA := firstToken(a)
	firstB := firstToken(b)
	if len(firstA) < minFirstNameLen {
		return false
	}
	return strings.EqualFold(firstA, firstB)
}

// ShortFormMatch handles abbreviated surnames such as "Kendall M" against
// "Kendall Matthews": first tokens equal, and one side's second token is a
// prefix of the other's.
func ShortFormMatch(a, b string) bool {
	tokensA := tokens(a)
	tokensB := tokens(b)
	if len(tokensA) < 2 || len(tokensB) < 2 {
		return false
	}
	if !strings.EqualFold(tokensA[0], tokensB[0]) {
		return false
	}
	lastA := strings.ToLower(tokensA[1])
	lastB := strings.ToLower(tokensB[1])
	return strings.HasPrefix(lastA, lastB) || strings.HasPrefix(lastB, lastA)
}

// ContainsEither is the last-resort substring containment check in either
// direction.
func ContainsEither(a, b string) bool {
	lowerA := strings.ToLower(strings.TrimSpace(a))
	lowerB := strings.ToLower(strings.TrimSpace(b))
	if lowerA == "" || lowerB == "" {
		return false
	}
	return strings.Contains(lowerA, lowerB) || strings.Contains(lowerB, lowerA)
}

func tokens(name string) []string {
	return strings.Fields(strings.TrimSpace(name))
}

func firstToken(name string) string {
	parts := tokens(name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

// ResolveIdentity resolves an attendance employee to an internal identity:
// first by exact external-identifier match, then by the ordered fuzzy name
// predicates. The boolean is false when nothing resolves; callers emit a
// placeholder rather than dropping the candidate.
func ResolveIdentity(name, externalID string, identities []model.Identity) (model.Identity, bool) {
	if externalID != "" {
		for _, identity := range identities {
			if identity.POSEmployeeID != "" && identity.POSEmployeeID == externalID {
				return identity, true
			}
		}
	}

	for _, predicate := range NamePredicates() {
		for _, identity := range identities {
			if predicate.Match(name, identity.Name) {
				return identity, true
			}
		}
	}

	return model.Identity{}, false
}
