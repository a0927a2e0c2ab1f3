package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// RoleWingGeneral marks a teacher deployable to any wing of the campus.
const RoleWingGeneral = "wing-general"

// RoleWingPrefix scopes a role tag to a single wing, e.g. "wing:north".
const RoleWingPrefix = "wing:"

// Teacher represents an instructor record.
type Teacher struct {
	ID        string         `db:"id" json:"id"`
	NIP       *string        `db:"nip" json:"nip,omitempty"`
	Email     string         `db:"email" json:"email"`
	FullName  string         `db:"full_name" json:"full_name"`
	Phone     *string        `db:"phone" json:"phone,omitempty"`
	Roles     pq.StringArray `db:"roles" json:"roles"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

// EligibleForWing reports whether the teacher's role tags permit duties in
// the given section wing. A wing-general role matches every wing.
func (t *Teacher) EligibleForWing(section string) bool {
	if t == nil {
		return false
	}
	for _, role := range t.Roles {
		if role == RoleWingGeneral {
			return true
		}
		if wing, ok := strings.CutPrefix(role, RoleWingPrefix); ok && strings.EqualFold(wing, section) {
			return true
		}
	}
	return false
}
