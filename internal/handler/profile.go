package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/service"
)

// ProfileHandler exposes the profile store and the social graph over HTTP.
type ProfileHandler struct {
	profiles *service.ProfileService
	sync     *service.SyncService
	activity *service.ActivityService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(
	profiles *service.ProfileService,
	sync *service.SyncService,
	activity *service.ActivityService,
	logger *slog.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		sync:     sync,
		activity: activity,
		logger:   logger,
	}
}

// updateProfileRequest carries the user-editable profile fields. Absent
// fields decode as empty strings and clear the stored value, matching a
// full-form submit.
type updateProfileRequest struct {
	Bio      string `json:"bio"`
	Location string `json:"location"`
	Company  string `json:"company"`
}

// HandleDirectory returns all profiles, most recently updated first.
//
// HTTP: GET /api/profiles
func (h *ProfileHandler) HandleDirectory(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.Directory(r.Context())
	if err != nil {
		h.logger.Error("HandleDirectory failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profiles)
}

// HandleGetProfile returns a single profile by user ID.
//
// HTTP: GET /api/profiles/{userID}
func (h *ProfileHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile replaces the authenticated user's editable fields.
//
// HTTP: PUT /api/profile
// Auth: Required
//
// Only bio, location and company are writable here; everything else on the
// profile is owned by the GitHub sync.
func (h *ProfileHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authorized"}`, http.StatusUnauthorized)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, req.Bio, req.Location, req.Company)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleSync re-fetches the authenticated user's GitHub data on demand.
//
// HTTP: POST /api/profile/sync
// Auth: Required
//
// Unlike the login-time triggers this one is synchronous: the caller asked
// for fresh data and gets either the refreshed profile or the error.
func (h *ProfileHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authorized"}`, http.StatusUnauthorized)
		return
	}

	profile, err := h.sync.ManualSync(r.Context(), userID)
	if err != nil {
		h.logger.Warn("manual sync failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleToggleFollow follows the target if not yet followed, unfollows
// otherwise, and reports the resulting state.
//
// HTTP: POST /api/profiles/{userID}/follow
// Auth: Required
//
// Response: {"following": true} when the toggle created the edge,
// {"following": false} when it removed it.
func (h *ProfileHandler) HandleToggleFollow(w http.ResponseWriter, r *http.Request) {
	actorID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authorized"}`, http.StatusUnauthorized)
		return
	}
	targetID := chi.URLParam(r, "userID")

	following, err := h.profiles.ToggleFollow(r.Context(), actorID, targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// HandleActivity returns the authenticated user's recent activity entries.
//
// HTTP: GET /api/activity
// Auth: Required
func (h *ProfileHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authorized"}`, http.StatusUnauthorized)
		return
	}

	entries, err := h.activity.Recent(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
