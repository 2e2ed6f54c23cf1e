package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vendorrisk/golang_services/internal/campaign_service/domain"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

const (
	AuthenticatedUserContextKey = ContextKey("authenticatedUser")
)

// TenantIDParam is the chi URL parameter holding the tenant id.
const TenantIDParam = "tenantId"

// AuthenticatedUser holds information about the authenticated user.
type AuthenticatedUser struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	Permissions []string
}

// Actor returns the identity the application services act on behalf of.
func (u AuthenticatedUser) Actor() domain.Actor {
	return domain.Actor{TenantID: u.TenantID, UserID: u.UserID}
}

func (u AuthenticatedUser) HasPermission(permission string) bool {
	return slices.Contains(u.Permissions, permission)
}

// AccessClaims are the claims of an access token: sub is the user id, tid the
// tenant id and perms the granted permission names.
type AccessClaims struct {
	TenantID    string   `json:"tid"`
	Permissions []string `json:"perms"`
	jwt.RegisteredClaims
}

// UserFromContext returns the user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	u, ok := ctx.Value(AuthenticatedUserContextKey).(AuthenticatedUser)
	return u, ok
}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u AuthenticatedUser) context.Context {
	return context.WithValue(ctx, AuthenticatedUserContextKey, u)
}

// AuthMiddleware validates HS256 bearer tokens signed with secret.
func AuthMiddleware(secret []byte, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(r.Context(), "Authorization header missing")
				writeError(w, http.StatusUnauthorized, "authorization header required")
				return
			}

			scheme, tokenString, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.WarnContext(r.Context(), "Invalid Authorization header format")
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			var claims AccessClaims
			token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "Token validation failed", "error", err)
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, errUser := uuid.Parse(claims.Subject)
			tenantID, errTenant := uuid.Parse(claims.TenantID)
			if errUser != nil || errTenant != nil {
				logger.WarnContext(r.Context(), "Token carries invalid subject or tenant", "sub", claims.Subject, "tid", claims.TenantID)
				writeError(w, http.StatusUnauthorized, "invalid subject or tenant")
				return
			}

			authUser := AuthenticatedUser{
				UserID:      userID,
				TenantID:    tenantID,
				Permissions: claims.Permissions,
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), authUser)))
		})
	}
}

// TenantMatchMiddleware rejects requests whose tenantId path parameter differs
// from the token's tenant.
func TenantMatchMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := UserFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "AuthenticatedUser not found in context. AuthMiddleware must run first.")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			tenantID, err := uuid.Parse(chi.URLParam(r, TenantIDParam))
			if err != nil || tenantID != authUser.TenantID {
				logger.WarnContext(r.Context(), "Tenant mismatch",
					"user_id", authUser.UserID,
					"token_tenant", authUser.TenantID,
					"path_tenant", chi.URLParam(r, TenantIDParam))
				writeError(w, http.StatusForbidden, domain.ErrAccessDenied.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BasicPermissionCheckMiddleware checks if the authenticated user has a specific permission.
func BasicPermissionCheckMiddleware(requiredPermission string, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authUser, ok := UserFromContext(r.Context())
			if !ok {
				logger.ErrorContext(r.Context(), "AuthenticatedUser not found in context. AuthMiddleware must run first.")
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !authUser.HasPermission(requiredPermission) {
				logger.WarnContext(r.Context(), "Permission denied",
					"user_id", authUser.UserID,
					"required_permission", requiredPermission,
					"user_permissions", strings.Join(authUser.Permissions, ","))
				writeError(w, http.StatusForbidden, "forbidden: missing permission "+requiredPermission)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
