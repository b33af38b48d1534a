package service

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"school-auth/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	jwtIssuer        = "school-auth"
)

// JWTService emite y valida tokens de sesion para cuentas activadas.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	store      RefreshTokenStore
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type Claims struct {
	UserID        string   `json:"uid"`
	Email         string   `json:"email"`
	DisplayName   string   `json:"display_name,omitempty"`
	Roles         []string `json:"roles,omitempty"`
	EmailVerified bool     `json:"email_verified"`
	TokenType     string   `json:"typ"`
	jwt.RegisteredClaims
}

// AccountID devuelve el id numerico de la cuenta contenida en el token.
func (c Claims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(c.UserID, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrJWTInvalid
	}
	return id, nil
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

func NewJWTService(secret string, accessTTL, refreshTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     jwtIssuer,
		store:      NewMemoryRefreshTokenStore(),
	}
}

func NewJWTServiceWithStore(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *JWTService {
	svc := NewJWTService(secret, accessTTL, refreshTTL)
	if store != nil {
		svc.store = store
	}
	return svc
}

func (s *JWTService) GeneratePair(account domain.Account) (TokenPair, error) {
	if len(s.secret) == 0 || account.ID <= 0 {
		return TokenPair{}, ErrJWTInvalid
	}
	now := time.Now().UTC()
	access, _, err := s.sign(account, now, s.accessTTL, tokenTypeAccess)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, jti, err := s.sign(account, now, s.refreshTTL, tokenTypeRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	if s.store != nil {
		if err := s.store.Store(jti, account.ID, s.refreshTTL); err != nil {
			return TokenPair{}, err
		}
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// ConsumeRefresh valida un refresh token y lo revoca; el llamador emite el nuevo par.
func (s *JWTService) ConsumeRefresh(refreshToken string) (Claims, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return Claims{}, err
	}
	ok, err := s.store.Exists(claims.ID)
	if err != nil || !ok {
		return Claims{}, ErrJWTInvalid
	}
	if err := s.store.Revoke(claims.ID); err != nil {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) RevokeRefresh(refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return err
	}
	return s.store.Revoke(claims.ID)
}

func (s *JWTService) ParseAccessToken(accessToken string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(accessToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess {
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) parseRefresh(refreshToken string) (Claims, error) {
	if len(s.secret) == 0 || s.store == nil {
		return Claims{}, ErrJWTInvalid
	}
	if strings.TrimSpace(refreshToken) == "" {
		return Claims{}, ErrJWTInvalid
	}
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeRefresh || claims.ID == "" {
		return Claims{}, ErrJWTInvalid
	}
	if !s.isValidClaims(claims) {
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) sign(account domain.Account, now time.Time, ttl time.Duration, tokenType string) (string, string, error) {
	uid := strconv.FormatInt(account.ID, 10)
	registered := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   uid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if tokenType == tokenTypeRefresh {
		registered.ID = uuid.NewString()
	}
	claims := Claims{
		UserID:           uid,
		Email:            account.Email,
		DisplayName:      account.DisplayName,
		Roles:            account.RoleNames(),
		EmailVerified:    account.IsVerified,
		TokenType:        tokenType,
		RegisteredClaims: registered,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	return signed, registered.ID, err
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrJWTExpired
		}
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
