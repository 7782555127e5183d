package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// AuthService handles the authentication business logic: upserting accounts
// from GitHub OAuth identities and issuing session tokens. It does not set
// cookies or read requests — those are handler concerns.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles everything the callback handler needs in one step:
// the user record, the session JWT, and whether this login created the
// account (which decides the sync trigger to fire).
type AuthResult struct {
	User    *model.User
	Token   string
	Created bool
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: upsert the user
// keyed by their stable GitHub ID (first login inserts, later logins
// refresh identity fields and the access token), then issue a session JWT.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser, accessToken string) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user := &model.User{
		GitHubID:    ghUser.ID,
		Login:       ghUser.Login,
		Email:       ghUser.Email,
		AvatarURL:   ghUser.AvatarURL,
		AccessToken: accessToken,
	}

	created, err := s.users.Upsert(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", user.Login),
		slog.Bool("created", created),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:    user,
		Token:   token,
		Created: created,
	}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/me handler after the middleware validates the session.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}
