package messaging

import "strings"

// Role of a marketplace user.
type Role string

const (
	RoleClient      Role = "client"
	RolePrestataire Role = "prestataire"
)

// UnknownDisplayName is shown when no profile exists for a participant.
const UnknownDisplayName = "Utilisateur"

// Profile is the read-only slice of a user profile needed for list views.
type Profile struct {
	UserID      string `db:"user_id"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	CompanyName string `db:"company_name"`
	Role        Role   `db:"role"`
}

// DisplayName prefers the person's full name, then the company name, then a
// role label.
func (p Profile) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if full != "" {
		return full
	}
	if company := strings.TrimSpace(p.CompanyName); company != "" {
		return company
	}
	if p.Role == RolePrestataire {
		return "Prestataire"
	}
	return "Client"
}
