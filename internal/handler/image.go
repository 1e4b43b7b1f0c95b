package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JankoLoL/Get-a-pic/internal/ctxkeys"
	"github.com/JankoLoL/Get-a-pic/internal/service"
	"github.com/JankoLoL/Get-a-pic/internal/validation"
)

type ImageHandler struct {
	imageService *service.ImageService
	maxBytes     int64
}

func NewImageHandler(imageService *service.ImageService, maxBytes int64) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		maxBytes:     maxBytes,
	}
}

// Upload accepts a multipart image, stores it and synchronously derives the
// thumbnails the caller's plan configures, then responds with the projected
// representation.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	plan := ctxkeys.Plan(r.Context())
	ent := service.ResolveEntitlement(plan)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	err := r.ParseMultipartForm(h.maxBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_file is required")
		return
	}
	defer func() { _ = file.Close() }()

	err = validation.ValidateFile(header, validation.ImageConstraints)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	image, err := h.imageService.Upload(r.Context(), user, ent, header.Filename, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rep, err := h.imageService.ProjectByID(image, user.Email, ent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	slog.Info("image uploaded", "image_id", image.ID, "user_id", user.ID)
	writeJSON(w, http.StatusCreated, rep)
}

// List returns the caller's own images, projected against the current plan.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ent := service.ResolveEntitlement(ctxkeys.Plan(r.Context()))

	images, err := h.imageService.ByUserID(user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	reps := make([]service.ImageRepresentation, 0, len(images))
	for _, image := range images {
		rep, err := h.imageService.ProjectByID(image, user.Email, ent)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		reps = append(reps, rep)
	}

	writeJSON(w, http.StatusOK, reps)
}

func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ent := service.ResolveEntitlement(ctxkeys.Plan(r.Context()))

	image, err := h.imageService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	rep, err := h.imageService.ProjectByID(image, user.Email, ent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.imageService.Delete(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OriginalFile serves the original bytes, gated on original access.
func (h *ImageHandler) OriginalFile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ent := service.ResolveEntitlement(ctxkeys.Plan(r.Context()))

	image, err := h.imageService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, contentType, err := h.imageService.OriginalFile(r.Context(), image, ent)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

// ThumbnailFile serves a derived variant, gated on the size being in the
// caller's current entitlement.
func (h *ImageHandler) ThumbnailFile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ent := service.ResolveEntitlement(ctxkeys.Plan(r.Context()))

	size, err := strconv.Atoi(r.PathValue("size"))
	if err != nil || size <= 0 {
		writeError(w, http.StatusBadRequest, "invalid thumbnail size")
		return
	}

	image, err := h.imageService.ByID(user.ID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, contentType, err := h.imageService.ThumbnailFile(r.Context(), image, ent, size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
