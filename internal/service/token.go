package service

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

const (
	defaultVerificationTTL = 24 * time.Hour
	verificationTokenBytes = 32
)

// TokenIssuer genera tokens de verificacion y aplica su ventana de validez.
type TokenIssuer struct {
	ttl time.Duration
}

func NewTokenIssuer(ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}
	return &TokenIssuer{ttl: ttl}
}

// Issue devuelve un token url-safe de 32 bytes aleatorios.
func (i *TokenIssuer) Issue() (string, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Expired es true cuando now es estrictamente posterior a sentAt + ttl.
// Un token sin fecha de emision se considera vencido.
func (i *TokenIssuer) Expired(sentAt *time.Time, now time.Time) bool {
	if sentAt == nil {
		return true
	}
	return now.After(sentAt.Add(i.ttl))
}

func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}
