package services

import (
	"errors"
	"testing"
	"time"

	"github.com/joakmannn/SocialMed/internal/core/domain"
)

func newTestAuthService() (*AuthService, *memUserRepo, *SessionService, *stubIdentity) {
	users := newMemUserRepo()
	store := newMemSessionStore()
	tokens := NewTokenService("test-secret", time.Hour)
	sessions := NewSessionService(testLogger(), tokens, store, time.Hour)
	identity := &stubIdentity{}
	auth := NewAuthService(testLogger(), users, sessions, identity)
	return auth, users, sessions, identity
}

func TestSignUpAndSignIn(t *testing.T) {
	auth, _, sessions, _ := newTestAuthService()
	ctx := t.Context()

	user, token, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.PasswordHash == "longenough" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
	if _, err := sessions.Resolve(ctx, token); err != nil {
		t.Fatalf("signup token must resolve: %v", err)
	}

	user2, token2, err := auth.SignIn(ctx, "a@b.com", "longenough")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user2.ID != user.ID {
		t.Fatal("sign-in returned a different account")
	}
	if _, err := sessions.Resolve(ctx, token2); err != nil {
		t.Fatalf("signin token must resolve: %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	auth, _, _, _ := newTestAuthService()
	ctx := t.Context()

	cases := []struct {
		name     string
		email    string
		password string
		username string
	}{
		{"bad email", "nope", "longenough", "alice"},
		{"short password", "a@b.com", "short", "alice"},
		{"empty username", "a@b.com", "longenough", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := auth.SignUp(ctx, tc.email, tc.password, tc.username)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	auth, _, _, _ := newTestAuthService()
	ctx := t.Context()

	if _, _, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice"); err != nil {
		t.Fatal(err)
	}
	_, _, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice2")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	auth, _, _, _ := newTestAuthService()
	ctx := t.Context()

	if _, _, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice"); err != nil {
		t.Fatal(err)
	}
	_, _, err := auth.SignIn(ctx, "a@b.com", "wrongwrong")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	_, _, err = auth.SignIn(ctx, "missing@b.com", "longenough")
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("unknown email: err = %v, want ErrUnauthenticated", err)
	}
}

func TestSignInWithGoogle(t *testing.T) {
	auth, users, sessions, identity := newTestAuthService()
	ctx := t.Context()
	identity.identity = &domain.ExternalIdentity{
		Subject:   "google-sub",
		Email:     "g@b.com",
		Name:      "Gee",
		AvatarURL: "http://a/g.png",
	}

	user, token, err := auth.SignInWithGoogle(ctx, "provider-token")
	if err != nil {
		t.Fatalf("SignInWithGoogle: %v", err)
	}
	if user.Email != "g@b.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if _, err := sessions.Resolve(ctx, token); err != nil {
		t.Fatalf("google token must resolve: %v", err)
	}

	// Second sign-in reuses the account.
	again, _, err := auth.SignInWithGoogle(ctx, "provider-token")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != user.ID {
		t.Fatal("second google sign-in created a new account")
	}
	if len(users.users) != 1 {
		t.Fatalf("accounts = %d, want 1", len(users.users))
	}
}

func TestSignInWithGoogleRejectedToken(t *testing.T) {
	auth, _, _, identity := newTestAuthService()
	identity.err = domain.ErrInvalidToken

	_, _, err := auth.SignInWithGoogle(t.Context(), "bad")
	if err == nil {
		t.Fatal("want error for rejected provider token")
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	auth, _, sessions, _ := newTestAuthService()
	ctx := t.Context()

	_, token, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice")
	if err != nil {
		t.Fatal(err)
	}
	sess, err := sessions.Resolve(ctx, token)
	if err != nil {
		t.Fatal(err)
	}
	if err := auth.SignOut(WithSession(ctx, sess)); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := sessions.Resolve(ctx, token); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("revoked token resolved: err = %v, want ErrInvalidToken", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	auth, users, _, _ := newTestAuthService()
	ctx := t.Context()

	user, _, err := auth.SignUp(ctx, "a@b.com", "longenough", "alice")
	if err != nil {
		t.Fatal(err)
	}
	sessCtx := WithSession(ctx, &domain.Session{UserID: user.ID, Username: user.Username})

	age := 30
	gender := domain.GenderFemale
	if err := auth.UpdateProfile(sessCtx, domain.ProfilePatch{Age: &age, Gender: &gender}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	got := users.users[user.ID]
	if got.Age == nil || *got.Age != 30 || got.Gender != domain.GenderFemale {
		t.Fatalf("profile not applied: %+v", got)
	}
	// Untouched fields keep their values.
	if got.Username != "alice" {
		t.Fatalf("username changed: %q", got.Username)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	auth, _, _, _ := newTestAuthService()
	sessCtx := testSessionCtx("someone")

	tooYoung := 12
	badGender := domain.Gender("robot")
	empty := "  "
	cases := []domain.ProfilePatch{
		{Age: &tooYoung},
		{Gender: &badGender},
		{Username: &empty},
	}
	for _, patch := range cases {
		err := auth.UpdateProfile(sessCtx, patch)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("patch %+v: err = %v, want ValidationError", patch, err)
		}
	}
}
