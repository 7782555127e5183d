package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// Validation limits for the editable profile fields.
const (
	MaxBioLength      = 1000
	MaxLocationLength = 100
	MaxCompanyLength  = 100
)

// ProfileService handles profile reads, editable-field updates, and the
// follow/unfollow social graph mutator.
type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		logger:   logger,
	}
}

// Get returns the full profile for userID.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// Directory returns the listing projection of every profile, most recently
// updated first.
func (s *ProfileService) Directory(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.profiles.Directory(ctx)
	if err != nil {
		s.logger.Error("failed to list profiles", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile replaces the user-owned text fields and returns the updated
// profile. Only bio/location/company are written — GitHub-derived fields
// and follow sets belong to other write paths.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID, bio, location, company string) (*model.Profile, error) {
	bio = strings.TrimSpace(bio)
	location = strings.TrimSpace(location)
	company = strings.TrimSpace(company)

	if len(bio) > MaxBioLength {
		return nil, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", MaxBioLength))
	}
	if len(location) > MaxLocationLength {
		return nil, apperror.ValidationFailed("location",
			fmt.Sprintf("location must be %d characters or less", MaxLocationLength))
	}
	if len(company) > MaxCompanyLength {
		return nil, apperror.ValidationFailed("company",
			fmt.Sprintf("company must be %d characters or less", MaxCompanyLength))
	}

	if err := s.profiles.UpdateEditable(ctx, userID, bio, location, company); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating profile %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	return s.profiles.GetByUserID(ctx, userID)
}

// ToggleFollow flips the directed follow edge actor→target and returns the
// new state (true = actor now follows target).
//
// Preconditions are checked before any write: no self-follow, and both
// profiles must exist. The edge itself is mirrored — target appears in
// actor.following iff actor appears in target.followers — and the
// repository updates both sides as one logical operation.
func (s *ProfileService) ToggleFollow(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return false, apperror.InvalidOperation("you cannot follow yourself")
	}

	actor, err := s.profiles.GetByUserID(ctx, actorID)
	if err != nil {
		return false, err
	}
	if _, err := s.profiles.GetByUserID(ctx, targetID); err != nil {
		return false, err
	}

	nowFollowing := !slices.Contains(actor.Following, targetID)

	if err := s.profiles.UpdateFollowEdge(ctx, actorID, targetID, nowFollowing); err != nil {
		s.logger.Error("failed to update follow edge",
			slog.String("actorID", actorID),
			slog.String("targetID", targetID),
			slog.String("error", err.Error()),
		)
		return false, fmt.Errorf("toggling follow %s→%s: %w", actorID, targetID, err)
	}

	s.logger.Info("follow toggled",
		slog.String("actorID", actorID),
		slog.String("targetID", targetID),
		slog.Bool("following", nowFollowing),
	)

	return nowFollowing, nil
}
