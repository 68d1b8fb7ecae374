package auth

import (
	"DatasetCatalog/internal/config"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity service.
type Claims struct {
	jwt.RegisteredClaims
	UserID        string `json:"id,omitempty"`
	Role          string `json:"role,omitempty"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	ExtraUserData struct {
		Apps []string `json:"apps,omitempty"`
	} `json:"extraUserData"`
}

// Identity converts the claims into the requesting identity.
func (c *Claims) Identity() *Identity {
	id := c.UserID
	if id == "" {
		id = c.Subject
	}
	return &Identity{
		ID:    id,
		Role:  strings.ToUpper(c.Role),
		Name:  c.Name,
		Email: c.Email,
		Apps:  c.ExtraUserData.Apps,
	}
}

type JWTValidator struct {
	cfg       config.JWTConfig
	key       any
	expected  string
	clockFunc func() time.Time
}

func NewJWTValidator(cfg config.JWTConfig) (*JWTValidator, error) {
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("jwt issuer is required")
	}
	if strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("jwt audience is required")
	}
	alg := strings.ToUpper(strings.TrimSpace(cfg.ValidationType))
	if alg == "" {
		return nil, errors.New("jwt validation type is required")
	}

	v := &JWTValidator{
		cfg:       cfg,
		expected:  alg,
		clockFunc: time.Now,
	}

	switch alg {
	case "HS256":
		if cfg.HMACSecret == "" {
			return nil, errors.New("jwt hmac secret is required for HS256")
		}
		v.key = []byte(cfg.HMACSecret)
	case "RS256":
		pemBytes, err := loadPublicKeyPEM(cfg)
		if err != nil {
			return nil, err
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("jwt public key is not RSA: %w", err)
		}
		v.key = key
	case "ES256":
		pemBytes, err := loadPublicKeyPEM(cfg)
		if err != nil {
			return nil, err
		}
		key, err := jwt.ParseECPublicKeyFromPEM(pemBytes)
		if err != nil {
			return nil, fmt.Errorf("jwt public key is not ECDSA: %w", err)
		}
		v.key = key
	default:
		return nil, fmt.Errorf("unsupported jwt validation type: %s", cfg.ValidationType)
	}

	return v, nil
}

func (v *JWTValidator) ValidateToken(token string) (*Claims, error) {
	skew := v.cfg.ClockSkewSec
	if skew < 0 {
		skew = 0
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.expected}),
		jwt.WithIssuer(v.cfg.Issuer),
		jwt.WithAudience(v.cfg.Audience),
		jwt.WithLeeway(time.Duration(skew)*time.Second),
		jwt.WithTimeFunc(v.clockFunc),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid jwt")
	}
	return claims, nil
}

func loadPublicKeyPEM(cfg config.JWTConfig) ([]byte, error) {
	keyPEM := strings.TrimSpace(cfg.PublicKeyPEM)
	if keyPEM == "" && strings.TrimSpace(cfg.PublicKeyPath) != "" {
		data, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read jwt public key: %w", err)
		}
		keyPEM = string(data)
	}
	if keyPEM == "" {
		return nil, errors.New("jwt public key is required")
	}
	return []byte(keyPEM), nil
}
