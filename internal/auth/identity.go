package auth

import (
	"context"
	"encoding/json"
	"strings"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the requesting user. A nil *Identity is anonymous.
type Identity struct {
	ID    string   `json:"id"`
	Role  string   `json:"role"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Apps  []string `json:"apps,omitempty"`
}

// User is an identity record owned by the identity service.
type User struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email" mapstructure:"email"`
	Role  string `json:"role" mapstructure:"role"`
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.ID != ""
}

// Policy decides which roles see identity-derived data.
type Policy struct {
	PrivilegedRoles []string
}

func (p Policy) IsPrivileged(i *Identity) bool {
	if !i.Authenticated() {
		return false
	}
	for _, r := range p.PrivilegedRoles {
		if strings.EqualFold(r, i.Role) {
			return true
		}
	}
	return false
}

func WithIdentity(ctx context.Context, i *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, i)
}

func IdentityFromContext(ctx context.Context) *Identity {
	i, _ := ctx.Value(identityContextKey).(*Identity)
	return i
}

// IdentityFromLoggedUser decodes the `loggedUser` query value the gateway
// injects when token validation happens upstream.
func IdentityFromLoggedUser(raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var payload struct {
		ID            string `json:"id"`
		Role          string `json:"role"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		ExtraUserData struct {
			Apps []string `json:"apps"`
		} `json:"extraUserData"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, err
	}
	if payload.ID == "" {
		return nil, nil
	}
	return &Identity{
		ID:    payload.ID,
		Role:  strings.ToUpper(payload.Role),
		Name:  payload.Name,
		Email: payload.Email,
		Apps:  payload.ExtraUserData.Apps,
	}, nil
}
