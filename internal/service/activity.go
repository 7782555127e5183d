package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// ActivityService records login/logout events and serves each user their
// own recent activity feed.
type ActivityService struct {
	activity repository.ActivityRepository
	logger   *slog.Logger
}

// NewActivityService creates an ActivityService.
func NewActivityService(activity repository.ActivityRepository, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		activity: activity,
		logger:   logger,
	}
}

// Record appends an entry to the user's activity log. details may be nil.
func (s *ActivityService) Record(ctx context.Context, userID, action string, details any) error {
	entry := &model.ActivityEntry{
		UserID: userID,
		Action: action,
	}

	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("service/activity: encoding details: %w", err)
		}
		entry.Details = raw
	}

	if err := s.activity.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record activity",
			slog.String("userID", userID),
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
		return err
	}

	return nil
}

// Recent returns the caller's most recent activity entries, newest first.
func (s *ActivityService) Recent(ctx context.Context, userID string) ([]model.ActivityEntry, error) {
	return s.activity.Recent(ctx, userID, repository.DefaultActivityLimit)
}
