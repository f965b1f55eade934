package services

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/studycounsel/internal/models"
	mongorepo "github.com/yoockh/studycounsel/internal/repositories/mongo"
	"github.com/yoockh/studycounsel/internal/utils"
)

type ProfileService interface {
	GetMe(ctx context.Context, userID string) (*models.Profile, error)
	// Update applies the set fields of d, creating the profile when absent.
	Update(ctx context.Context, userID string, d *models.ProfileDelta) (*models.Profile, error)
}

type profileService struct {
	profiles mongorepo.ProfileRepository
	now      func() time.Time
}

func NewProfileService(profiles mongorepo.ProfileRepository, now func() time.Time) ProfileService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &profileService{profiles: profiles, now: now}
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, d *models.ProfileDelta) (*models.Profile, error) {
	const op = "ProfileService.Update"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	values := d.Values()
	if len(values) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "no profile fields to update", nil)
	}

	p, err := s.profiles.SetFields(ctx, userID, values, s.now())
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return p, nil
}
