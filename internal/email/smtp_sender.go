package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	useTLS   bool
}

func NewSMTPSender(host string, port int, username, password, from string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		useTLS:   useTLS,
	}, nil
}

// Send entrega el mensaje. El identificador devuelto es el Message-ID generado.
func (s *SMTPSender) Send(_ context.Context, msg Message) (string, error) {
	if len(msg.To) == 0 || strings.TrimSpace(msg.To[0]) == "" {
		return "", fmt.Errorf("to email is required")
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	if msg.From == "" {
		msg.From = s.from
	}
	raw := buildMessage(messageID, msg)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if !s.useTLS {
		if err := smtp.SendMail(addr, auth, s.from, msg.To, []byte(raw)); err != nil {
			return "", err
		}
		return messageID, nil
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName: s.host,
	})
	if err != nil {
		return "", err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return "", err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return "", err
		}
	}
	if err := client.Mail(s.from); err != nil {
		return "", err
	}
	for _, to := range msg.To {
		if err := client.Rcpt(to); err != nil {
			return "", err
		}
	}
	writer, err := client.Data()
	if err != nil {
		return "", err
	}
	if _, err := writer.Write([]byte(raw)); err != nil {
		_ = writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	return messageID, nil
}

func buildMessage(messageID string, msg Message) string {
	headers := []string{
		fmt.Sprintf("Message-ID: %s", messageID),
		fmt.Sprintf("From: %s", msg.From),
		fmt.Sprintf("To: %s", strings.Join(msg.To, ", ")),
		fmt.Sprintf("Subject: %s", msg.Subject),
		"MIME-Version: 1.0",
	}
	if msg.ReplyTo != "" {
		headers = append(headers, fmt.Sprintf("Reply-To: %s", msg.ReplyTo))
	}

	body := msg.Text
	contentType := "Content-Type: text/plain; charset=\"UTF-8\""
	if msg.HTML != "" {
		body = msg.HTML
		contentType = "Content-Type: text/html; charset=\"UTF-8\""
	}
	headers = append(headers, contentType)

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
