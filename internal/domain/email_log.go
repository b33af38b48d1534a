package domain

import "time"

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

const (
	TemplateEmailVerification = "email_verification"
	TemplateWelcome           = "welcome_email"
)

// EmailLog registra cada intento de envio de correo transaccional.
type EmailLog struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Subject      string    `json:"subject"`
	TemplateName string    `json:"template_name"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
