package email

import (
	"context"
	"errors"
)

// Tag etiqueta un envio para el proveedor (categoria, proyecto).
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Message es un correo transaccional ya renderizado.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
	Tags    []Tag
}

// Sender define la interfaz de entrega de correos. Devuelve el identificador
// de entrega del proveedor.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) Send(_ context.Context, _ Message) (string, error) {
	if s.reason == "" {
		return "", errors.New("email sender disabled")
	}
	return "", errors.New(s.reason)
}
