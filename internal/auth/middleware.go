package auth

import (
	"DatasetCatalog/internal/logger"
	"encoding/json"
	"net/http"
	"strings"
)

// Middleware attaches the requesting identity to the request context.
// With a validator, a bearer token is required to be valid when present.
// Without one, the gateway-provided `loggedUser` query value is trusted.
func Middleware(v *JWTValidator, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			id  *Identity
			err error
		)
		if v != nil {
			id, err = fromBearer(v, r.Header.Get("Authorization"))
		} else {
			id, err = IdentityFromLoggedUser(r.URL.Query().Get("loggedUser"))
		}
		if err != nil {
			logger.Warn("auth_rejected", map[string]any{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func fromBearer(v *JWTValidator, header string) (*Identity, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, nil
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		token = header
	}
	claims, err := v.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	return claims.Identity(), nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]any{{"status": http.StatusUnauthorized, "detail": "Invalid token"}},
	})
}
