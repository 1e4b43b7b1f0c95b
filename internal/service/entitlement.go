package service

import (
	"github.com/JankoLoL/Get-a-pic/internal/model"
)

// Entitlement is the resolved set of capabilities a plan grants. Core
// operations take it as an explicit parameter; nothing reaches into ambient
// request state.
type Entitlement struct {
	Sizes          []int
	OriginalAccess bool
	CanIssueLink   bool
}

// HasSize reports whether the entitlement includes the given thumbnail edge length.
func (e Entitlement) HasSize(size int) bool {
	for _, s := range e.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// ResolveEntitlement maps a plan onto its entitlement. A nil plan resolves to
// the zero entitlement. Any future policy beyond mirroring the plan (size
// tiers, grandfathering) belongs here, not at call sites.
func ResolveEntitlement(plan *model.Plan) Entitlement {
	if plan == nil {
		return Entitlement{}
	}

	return Entitlement{
		Sizes:          plan.ThumbnailSizes,
		OriginalAccess: plan.HasOriginalImageLink,
		CanIssueLink:   plan.CanGenerateExpiringLink,
	}
}
