package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/joakmannn/SocialMed/internal/core/contracts"
	"github.com/joakmannn/SocialMed/internal/core/domain"
)

type IAuthService interface {
	SignUp(ctx context.Context, email, password, username string) (*domain.User, string, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, string, error)
	// SignInWithGoogle verifies the provider id token, upserts the account
	// and issues a session like a password sign-in.
	SignInWithGoogle(ctx context.Context, idToken string) (*domain.User, string, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type AuthService struct {
	log      *slog.Logger
	users    domain.UserRepository
	sessions ISessionService
	identity contracts.IdentityProvider
}

func NewAuthService(
	log *slog.Logger,
	users domain.UserRepository,
	sessions *SessionService,
	identity contracts.IdentityProvider,
) *AuthService {
	return &AuthService{
		log:      log,
		users:    users,
		sessions: sessions,
		identity: identity,
	}
}

func (s *AuthService) SignUp(ctx context.Context, email, password, username string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)
	if err := validateCredentials(email, password); err != nil {
		return nil, "", err
	}
	if username == "" {
		return nil, "", &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	user := domain.NewUser(email, username)
	user.PasswordHash = string(hash)
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, "", err
		}
		s.log.ErrorContext(ctx, "auth - sign up - create user failed", "email", email, "err", err)
		return nil, "", domain.Remote(err)
	}
	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.log.InfoContext(ctx, "auth - sign up - user created", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthenticated
		}
		s.log.ErrorContext(ctx, "auth - sign in - lookup failed", "email", email, "err", err)
		return nil, "", domain.Remote(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrUnauthenticated
	}
	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.log.InfoContext(ctx, "auth - sign in - success", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) SignInWithGoogle(ctx context.Context, idToken string) (*domain.User, string, error) {
	ident, err := s.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.ErrorContext(ctx, "auth - google sign in - token verification failed", "err", err)
		return nil, "", domain.ErrUnauthenticated
	}
	user := domain.NewUser(strings.ToLower(ident.Email), ident.Name)
	user.AvatarURL = ident.AvatarURL
	user, err = s.users.UpsertExternal(ctx, user)
	if err != nil {
		s.log.ErrorContext(ctx, "auth - google sign in - upsert failed", "email", ident.Email, "err", err)
		return nil, "", domain.Remote(err)
	}
	token, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	s.log.InfoContext(ctx, "auth - google sign in - success", "user_id", user.ID)
	return user, token, nil
}

func (s *AuthService) SignOut(ctx context.Context) error {
	sess, err := FromContext(ctx)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, sess.TokenID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) error {
	sess, err := FromContext(ctx)
	if err != nil {
		return err
	}
	if err := validatePatch(patch); err != nil {
		return err
	}
	if err := s.users.UpdateProfile(ctx, sess.UserID, patch); err != nil {
		s.log.ErrorContext(ctx, "auth - update profile failed", "user_id", sess.UserID, "err", err)
		return domain.Remote(err)
	}
	s.log.InfoContext(ctx, "auth - profile updated", "user_id", sess.UserID)
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	sess, err := FromContext(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, domain.Remote(err)
	}
	return user, nil
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return &domain.ValidationError{Field: "email", Reason: "must be a valid address"}
	}
	if len(password) < 8 {
		return &domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}

func validatePatch(patch domain.ProfilePatch) error {
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if patch.Age != nil && (*patch.Age < 13 || *patch.Age > 120) {
		return &domain.ValidationError{Field: "age", Reason: "must be between 13 and 120"}
	}
	if patch.Gender != nil {
		switch *patch.Gender {
		case domain.GenderMale, domain.GenderFemale, domain.GenderUnspecified:
		default:
			return &domain.ValidationError{Field: "gender", Reason: "unknown value"}
		}
	}
	return nil
}
