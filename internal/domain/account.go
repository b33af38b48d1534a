package domain

import "time"

// Account es la identidad local persistida de un usuario de la plataforma.
type Account struct {
	ID                 int64      `json:"id"`
	ExternalID         string     `json:"external_id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	VerificationToken  *string    `json:"-"`
	VerificationSentAt *time.Time `json:"-"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	EmailVerifiedAt    *time.Time `json:"email_verified_at,omitempty"`
	DisplayName        string     `json:"display_name,omitempty"`
	Roles              []Role     `json:"roles,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Pending indica que la cuenta todavia espera la verificacion del email.
func (a Account) Pending() bool {
	return !a.IsVerified
}

// RoleNames devuelve los nombres de los roles asignados.
func (a Account) RoleNames() []string {
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Role es un grupo de permisos local, distinto del rol escolar de Person.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
