package routes

import (
	"net/http"

	"github.com/JankoLoL/Get-a-pic/internal/app"
	"github.com/JankoLoL/Get-a-pic/internal/handler"
	"github.com/JankoLoL/Get-a-pic/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	image := handler.NewImageHandler(app.ImageService, app.Cfg.UploadMaxBytes)
	link := handler.NewLinkHandler(app.LinkService)
	plan := handler.NewPlanHandler(app.PlanService)

	mux := http.NewServeMux()

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))

	// Images
	mux.HandleFunc("POST /api/images", middleware.RequireAuth(image.Upload))
	mux.HandleFunc("GET /api/images", middleware.RequireAuth(image.List))
	mux.HandleFunc("GET /api/images/{id}", middleware.RequireAuth(image.Get))
	mux.HandleFunc("DELETE /api/images/{id}", middleware.RequireAuth(image.Delete))
	mux.HandleFunc("GET /api/images/{id}/file", middleware.RequireAuth(image.OriginalFile))
	mux.HandleFunc("GET /api/images/{id}/thumbnails/{size}", middleware.RequireAuth(image.ThumbnailFile))

	// Expiring links. Redemption is unauthenticated: the token is the credential.
	mux.HandleFunc("POST /api/expiring-links", middleware.RequireAuth(link.Issue))
	mux.HandleFunc("GET /api/expiring-links/{token}", link.Redeem)

	// Catalog
	mux.HandleFunc("GET /api/plans", middleware.RequireAuth(plan.List))
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(plan.Profile))

	// Global middleware - executed in order (top to bottom)
	h := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.PlanService),
	)

	return h
}
