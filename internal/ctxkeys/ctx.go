package ctxkeys

import (
	"context"

	"github.com/JankoLoL/Get-a-pic/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey    contextKey = "user"
	ProfileKey contextKey = "profile"
	PlanKey    contextKey = "plan"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Profile(ctx context.Context) *model.Profile {
	profile, _ := ctx.Value(ProfileKey).(*model.Profile)
	return profile
}

func WithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

// Plan returns the authenticated user's plan, or nil when no plan is assigned.
func Plan(ctx context.Context) *model.Plan {
	plan, _ := ctx.Value(PlanKey).(*model.Plan)
	return plan
}

func WithPlan(ctx context.Context, plan *model.Plan) context.Context {
	return context.WithValue(ctx, PlanKey, plan)
}
