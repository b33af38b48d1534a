package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"school-auth/internal/domain"
	"school-auth/internal/email"
	"school-auth/internal/repository"
)

// DeliveryResult describe el resultado de un envio; nunca se propaga como error.
type DeliveryResult struct {
	Delivered bool
	MessageID string
	Reason    string
}

// Notifier es el contrato que usan los servicios de cuentas para enviar correos.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, to, token, userName string) DeliveryResult
	SendWelcomeEmail(ctx context.Context, to, userName string) DeliveryResult
}

// NotificationConfig agrupa los datos de remitente y enlaces.
type NotificationConfig struct {
	FromEmail    string
	SchoolName   string
	SchoolDomain string
	FrontendURL  string
	// LinkTTL es la validez del enlace de verificacion, tal como la aplica TokenIssuer.
	LinkTTL time.Duration
}

// NotificationService envia correos transaccionales y deja un registro por intento.
type NotificationService struct {
	logger *zap.Logger
	sender email.Sender
	logs   repository.EmailLogRepository
	cfg    NotificationConfig
}

func NewNotificationService(logger *zap.Logger, sender email.Sender, logs repository.EmailLogRepository, cfg NotificationConfig) *NotificationService {
	if sender == nil {
		sender = email.NewDisabledSender("no email transport configured")
	}
	return &NotificationService{
		logger: logger,
		sender: sender,
		logs:   logs,
		cfg:    cfg,
	}
}

func (s *NotificationService) SendVerificationEmail(ctx context.Context, to, token, userName string) DeliveryResult {
	subject := fmt.Sprintf("Confirm your registration - %s", s.cfg.SchoolName)
	data := email.TemplateData{
		SchoolName:      s.cfg.SchoolName,
		UserName:        userName,
		VerificationURL: s.verificationURL(token),
		ValidFor:        describeTTL(s.cfg.LinkTTL),
	}
	html, err := email.RenderVerification(data)
	if err != nil {
		return s.fail(ctx, to, subject, domain.TemplateEmailVerification, err)
	}
	text := fmt.Sprintf("Confirm your email for %s: %s\nThe link is valid for %s.", s.cfg.SchoolName, data.VerificationURL, data.ValidFor)
	return s.deliver(ctx, to, subject, domain.TemplateEmailVerification, html, text)
}

func (s *NotificationService) SendWelcomeEmail(ctx context.Context, to, userName string) DeliveryResult {
	subject := fmt.Sprintf("Welcome to %s", s.cfg.SchoolName)
	html, err := email.RenderWelcome(email.TemplateData{
		SchoolName: s.cfg.SchoolName,
		UserName:   userName,
	})
	if err != nil {
		return s.fail(ctx, to, subject, domain.TemplateWelcome, err)
	}
	text := fmt.Sprintf("Your %s account is active.", s.cfg.SchoolName)
	return s.deliver(ctx, to, subject, domain.TemplateWelcome, html, text)
}

func (s *NotificationService) deliver(ctx context.Context, to, subject, template, html, text string) DeliveryResult {
	if strings.TrimSpace(to) == "" {
		return s.fail(ctx, to, subject, template, errors.New("empty recipient"))
	}
	msg := email.Message{
		From:    s.from(),
		To:      []string{to},
		Subject: subject,
		HTML:    html,
		Text:    text,
		Tags: []email.Tag{
			{Name: "category", Value: template},
			{Name: "project", Value: "school-auth"},
		},
	}
	if s.cfg.SchoolDomain != "" {
		msg.ReplyTo = "support@" + s.cfg.SchoolDomain
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return s.fail(ctx, to, subject, template, err)
	}
	s.audit(ctx, domain.EmailLog{
		Email:        to,
		Subject:      subject,
		TemplateName: template,
		Status:       domain.EmailStatusSent,
	})
	s.logger.Info("email sent",
		zap.String("email", to),
		zap.String("template", template),
		zap.String("message_id", id),
	)
	return DeliveryResult{Delivered: true, MessageID: id}
}

func (s *NotificationService) fail(ctx context.Context, to, subject, template string, cause error) DeliveryResult {
	s.audit(ctx, domain.EmailLog{
		Email:        to,
		Subject:      subject,
		TemplateName: template,
		Status:       domain.EmailStatusFailed,
		ErrorMessage: cause.Error(),
	})
	s.logger.Warn("email delivery failed",
		zap.String("email", to),
		zap.String("template", template),
		zap.Error(cause),
	)
	return DeliveryResult{Reason: cause.Error()}
}

func (s *NotificationService) audit(ctx context.Context, entry domain.EmailLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Create(ctx, &entry); err != nil {
		s.logger.Warn("email log write failed", zap.String("email", entry.Email), zap.Error(err))
	}
}

func (s *NotificationService) from() string {
	if s.cfg.FromEmail == "" {
		return ""
	}
	if s.cfg.SchoolName == "" {
		return s.cfg.FromEmail
	}
	return fmt.Sprintf("%s <%s>", s.cfg.SchoolName, s.cfg.FromEmail)
}

func (s *NotificationService) verificationURL(token string) string {
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	return base + "/api/auth/verify-email?token=" + url.QueryEscape(token)
}

// describeTTL formatea la validez del enlace para el cuerpo del correo.
func describeTTL(ttl time.Duration) string {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	if ttl%time.Hour == 0 {
		if hours := int(ttl / time.Hour); hours != 1 {
			return fmt.Sprintf("%d hours", hours)
		}
		return "1 hour"
	}
	if ttl%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(ttl/time.Minute))
	}
	return ttl.String()
}
