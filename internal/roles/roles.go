package roles

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Role is the closed set of access levels known to the console. Canonical
// form is lower-case; use Parse to get from user or server input to a Role.
type Role string

const (
	Admin   Role = "admin"
	Manager Role = "manager"
	Staff   Role = "staff"
	Parent  Role = "parent"
	Student Role = "student"
)

// All lists every valid role, in menu order.
var All = []Role{Admin, Manager, Staff, Parent, Student}

// fold case-folds s for comparison. A cases.Caser may be stateful and must
// not be shared between goroutines, so each call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Parse converts free-form input (login form selection, server payload) into
// a canonical Role. Comparison is case-insensitive via Unicode case folding.
func Parse(s string) (Role, error) {
	folded := fold(s)
	for _, r := range All {
		if folded == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Equal reports whether two role spellings name the same role, ignoring case.
func Equal(a, b string) bool {
	return fold(a) == fold(b)
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	for _, v := range All {
		if r == v {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
