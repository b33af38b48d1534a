package domain

// SchoolRole es el rol de una persona en el registro de la escuela.
type SchoolRole string

const (
	SchoolRoleTeacher SchoolRole = "teacher"
	SchoolRoleStudent SchoolRole = "student"
)

// Person es la identidad resuelta desde el directorio escolar. No se persiste.
type Person struct {
	ExternalID    string     `json:"external_id"`
	DisplayName   string     `json:"display_name"`
	Image         string     `json:"image,omitempty"`
	LeaderClasses []string   `json:"leader_classes,omitempty"`
	Role          SchoolRole `json:"role"`
}
