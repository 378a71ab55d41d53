package auth

import (
	"net/http"
	"strings"
)

// Middleware enforces bearer-token auth and role checks on the driver API.
type Middleware struct {
	secret         []byte
	exemptPaths    map[string]struct{}
	operatorPrefix string
}

// NewMiddleware constructs a middleware. Paths in exempt skip auth
// entirely; paths under operatorPrefix require the operator role, every
// other authenticated path needs viewer.
func NewMiddleware(secret []byte, exempt []string, operatorPrefix string) *Middleware {
	set := make(map[string]struct{}, len(exempt))
	for _, path := range exempt {
		set[path] = struct{}{}
	}
	return &Middleware{secret: secret, exemptPaths: set, operatorPrefix: operatorPrefix}
}

// Wrap returns the handler guarded by auth.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.exemptPaths[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		claims, err := ParseJWT(token, m.secret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		role, _ := NormalizeRole(claims.Role)

		required := RoleViewer
		if m.operatorPrefix != "" && strings.HasPrefix(r.URL.Path, m.operatorPrefix) && r.Method != http.MethodGet {
			required = RoleOperator
		}
		if !role.Allows(required) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), role, claims.Subject)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
