package service

import (
	"errors"
	"fmt"

	"github.com/JankoLoL/Get-a-pic/internal/model"
	"github.com/JankoLoL/Get-a-pic/internal/repository"
)

// PlanService reads the administrator-owned plan catalog.
type PlanService struct {
	planRepo repository.PlanRepository
}

func NewPlanService(planRepo repository.PlanRepository) *PlanService {
	return &PlanService{planRepo: planRepo}
}

func (s *PlanService) All() ([]*model.Plan, error) {
	plans, err := s.planRepo.All()
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

// ForProfile resolves the profile's plan, or nil when no plan is assigned or
// the referenced plan no longer exists.
func (s *PlanService) ForProfile(profile *model.Profile) (*model.Plan, error) {
	if profile == nil || profile.PlanID == nil {
		return nil, nil
	}

	plan, err := s.planRepo.ByID(*profile.PlanID)
	if errors.Is(err, repository.ErrPlanNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return plan, nil
}
