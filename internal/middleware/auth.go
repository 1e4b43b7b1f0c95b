package middleware

import (
	"net/http"
	"strings"

	"github.com/JankoLoL/Get-a-pic/internal/ctxkeys"
	"github.com/JankoLoL/Get-a-pic/internal/service"
)

// AuthMiddleware checks for a bearer JWT and adds user + profile + plan to
// the request context if valid. Missing or invalid tokens simply continue
// unauthenticated; route-level RequireAuth enforces access.
func AuthMiddleware(authService *service.AuthService, planService *service.PlanService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyJWT(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.UserByID(userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			profile, err := authService.ProfileByUserID(userID)
			if err != nil {
				// Every user gets a profile at registration; a missing one is
				// a data problem, treat as unauthenticated.
				next.ServeHTTP(w, r)
				return
			}

			plan, err := planService.ForProfile(profile)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithProfile(ctx, profile)
			ctx = ctxkeys.WithPlan(ctx, plan)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the request carries an authenticated user
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}

		next.ServeHTTP(w, r)
	}
}
