package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/service"
)

// AuthHandler manages the GitHub OAuth login flow and sessions.
//
// Besides issuing the session cookie, the callback is where the profile
// sync triggers fire: account creation or login, depending on whether the
// upsert created the account. Both run as detached tasks — the user should
// land on the app immediately, not wait out three GitHub API calls.
type AuthHandler struct {
	github   *auth.GitHubProvider
	auths    *service.AuthService
	sync     *service.SyncService
	activity *service.ActivityService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	github *auth.GitHubProvider,
	auths *service.AuthService,
	sync *service.SyncService,
	activity *service.ActivityService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:   github,
		auths:    auths,
		sync:     sync,
		activity: activity,
		logger:   logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state value stored in a short-lived HttpOnly cookie is
// verified on callback, which proves the callback belongs to a flow this
// server started (CSRF check).
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// Flow:
//  1. Verify the state parameter against the cookie
//  2. Exchange the code for the GitHub identity + access token
//  3. Upsert the account (storing the token for later manual syncs)
//  4. Fire the matching sync trigger (creation vs login) asynchronously
//  5. Record the login in the activity log, set the session cookie, redirect
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, accessToken, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.auths.LoginOrRegisterGitHub(r.Context(), ghUser, accessToken)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	// The sync runs detached from the request: it outlives this handler
	// and gets its own timeout-bounded context. Its failures degrade to a
	// minimal profile inside the service; nothing to surface here.
	go h.runSyncTrigger(result.User, result.Created)

	h.recordActivity(r.Context(), result.User.ID, model.ActivityLogin, map[string]any{
		"service":   "github",
		"userAgent": r.UserAgent(),
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // behind HTTPS in production
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie and records the logout.
//
// HTTP: POST /auth/logout
//
// POST, not GET: logout changes state, and GET would be open to CSRF and
// browser prefetching.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		h.recordActivity(r.Context(), userID, model.ActivityLogout, nil)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user's account record.
//
// HTTP: GET /api/me
// Auth: Required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"not_authorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.auths.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user not found", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// runSyncTrigger fires the creation or login sync entry point with a fresh
// timeout-bounded context, since the request context dies with the handler.
func (h *AuthHandler) runSyncTrigger(user *model.User, created bool) {
	ctx, cancel := context.WithTimeout(context.Background(), service.DefaultSyncTimeout)
	defer cancel()

	var err error
	if created {
		err = h.sync.OnUserCreated(ctx, user)
	} else {
		err = h.sync.OnUserLoggedIn(ctx, user)
	}
	if err != nil {
		h.logger.Error("sync trigger failed",
			slog.String("userID", user.ID),
			slog.Bool("created", created),
			slog.String("error", err.Error()),
		)
	}
}

// recordActivity logs an activity entry, tolerating failures: the activity
// log is an audit convenience, never worth failing a login over.
func (h *AuthHandler) recordActivity(ctx context.Context, userID, action string, details any) {
	// Bounded independently so a slow write can't hold the response.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_ = h.activity.Record(ctx, userID, action, details)
}
