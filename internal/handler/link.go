package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JankoLoL/Get-a-pic/internal/ctxkeys"
	"github.com/JankoLoL/Get-a-pic/internal/img"
	"github.com/JankoLoL/Get-a-pic/internal/service"
)

type LinkHandler struct {
	linkService *service.LinkService
}

func NewLinkHandler(linkService *service.LinkService) *LinkHandler {
	return &LinkHandler{linkService: linkService}
}

type issueLinkRequest struct {
	ImageID           string `json:"image_id"`
	ExpirationSeconds int    `json:"expiration_seconds"`
}

type issueLinkResponse struct {
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue mints an expiring link for an image. Requires a plan that allows
// link generation.
func (h *LinkHandler) Issue(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ent := service.ResolveEntitlement(ctxkeys.Plan(r.Context()))

	var req issueLinkRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ImageID == "" {
		writeError(w, http.StatusBadRequest, "image_id is required")
		return
	}

	link, err := h.linkService.Issue(r.Context(), user, ent, req.ImageID, req.ExpirationSeconds)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("expiring link issued", "image_id", req.ImageID, "user_id", user.ID, "expires_at", link.ExpiresAt)
	writeJSON(w, http.StatusCreated, issueLinkResponse{
		Link:      h.linkService.URL(link),
		ExpiresAt: link.ExpiresAt,
	})
}

// Redeem serves the bound image's original bytes for an active token. No
// authentication: the token is the credential. Unknown and expired tokens
// answer identically.
func (h *LinkHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := h.linkService.Redeem(r.Context(), r.PathValue("token"))
	if errors.Is(err, img.ErrUnsupportedFormat) {
		// Stored data inconsistency, not a client error.
		slog.Error("redeemed link points at unservable file", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
