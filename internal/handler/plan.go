package handler

import (
	"net/http"
	"time"

	"github.com/JankoLoL/Get-a-pic/internal/ctxkeys"
	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/service"
)

// PlanHandler exposes the read-only plan catalog and the caller's profile.
type PlanHandler struct {
	planService *service.PlanService
}

func NewPlanHandler(planService *service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type planResponse struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	ThumbnailSizes          []int  `json:"thumbnail_sizes"`
	HasOriginalImageLink    bool   `json:"has_original_image_link"`
	CanGenerateExpiringLink bool   `json:"can_generate_expiring_link"`
}

type profileResponse struct {
	User      string        `json:"user"`
	Plan      *planResponse `json:"plan"`
	CreatedAt time.Time     `json:"created_at"`
}

func toPlanResponse(plan *model.Plan) *planResponse {
	if plan == nil {
		return nil
	}
	sizes := plan.ThumbnailSizes
	if sizes == nil {
		sizes = []int{}
	}
	return &planResponse{
		ID:                      plan.ID,
		Name:                    plan.Name,
		ThumbnailSizes:          sizes,
		HasOriginalImageLink:    plan.HasOriginalImageLink,
		CanGenerateExpiringLink: plan.CanGenerateExpiringLink,
	}
}

func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.planService.All()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]*planResponse, 0, len(plans))
	for _, plan := range plans {
		resp = append(resp, toPlanResponse(plan))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Profile returns the caller's identity and resolved plan.
func (h *PlanHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	profile := ctxkeys.Profile(r.Context())
	plan := ctxkeys.Plan(r.Context())

	writeJSON(w, http.StatusOK, profileResponse{
		User:      user.Email,
		Plan:      toPlanResponse(plan),
		CreatedAt: profile.CreatedAt,
	})
}
