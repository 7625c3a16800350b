package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maldonadorepuestos/storefront/internal/users"
	pkgAuth "github.com/maldonadorepuestos/storefront/pkg/auth"
	"github.com/maldonadorepuestos/storefront/pkg/config"
	"github.com/maldonadorepuestos/storefront/pkg/db/models"
	"github.com/maldonadorepuestos/storefront/pkg/enums"
	pkgerrors "github.com/maldonadorepuestos/storefront/pkg/errors"
	"github.com/maldonadorepuestos/storefront/pkg/security"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "maldonado",
	ExpirationMinutes: 30,
}

func TestServiceLoginIssuesBearerToken(t *testing.T) {
	password := "repuestos"
	repo := newStubUserRepo(&models.User{
		ID:           7,
		Email:        "cliente@example.com",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Cliente",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	})
	svc, sessions := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Cliente@Example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %q", resp.TokenType)
	}
	if resp.User == nil || resp.User.ID != 7 {
		t.Fatalf("expected user 7 in response, got %+v", resp.User)
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
	if _, ok := sessions.started[claims.ID]; !ok {
		t.Fatalf("expected session for jti %s", claims.ID)
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	repo := newStubUserRepo(&models.User{
		ID:           1,
		Email:        "a@example.com",
		PasswordHash: mustHashPassword(t, "correcta"),
		Name:         "A",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	})
	svc, _ := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "incorrecta"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nadie@example.com", Password: "x"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	repo := newStubUserRepo(&models.User{
		ID:           2,
		Email:        "baja@example.com",
		PasswordHash: mustHashPassword(t, "secreto"),
		Name:         "Baja",
		Role:         enums.UserRoleUser,
	})
	svc, _ := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "baja@example.com", Password: "secreto"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceRegister(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := buildTestService(t, repo)

	phone := "  2614000000 "
	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Nuevo@Example.com",
		Password: "123456",
		Name:     "Nuevo",
		Phone:    &phone,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "nuevo@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Phone == nil || *user.Phone != "2614000000" {
		t.Fatalf("expected trimmed phone, got %v", user.Phone)
	}
	if user.Role != string(enums.UserRoleUser) {
		t.Fatalf("expected user role, got %s", user.Role)
	}

	stored := repo.byEmail["nuevo@example.com"]
	if stored == nil || strings.Contains(stored.PasswordHash, "123456") {
		t.Fatalf("expected hashed password to be stored")
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "nuevo@example.com", Password: "123456", Name: "Otro"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterRequest{Email: "corta@example.com", Password: "123", Name: "Corta"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	svc, sessions := buildTestService(t, newStubUserRepo())
	sessions.started["jti-1"] = 1

	if err := svc.Logout(context.Background(), "jti-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.started["jti-1"]; ok {
		t.Fatalf("expected session to be revoked")
	}
}

func TestServiceMeAndUpdateMe(t *testing.T) {
	repo := newStubUserRepo(&models.User{ID: 3, Email: "c@example.com", Name: "Carla", Role: enums.UserRoleUser, IsActive: true})
	svc, _ := buildTestService(t, repo)

	me, err := svc.Me(context.Background(), 3)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Name != "Carla" {
		t.Fatalf("unexpected name %s", me.Name)
	}

	name := " Carla M "
	updated, err := svc.UpdateMe(context.Background(), 3, UpdateProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if updated.Name != "Carla M" {
		t.Fatalf("expected trimmed name, got %q", updated.Name)
	}

	short := "x"
	if _, err := svc.UpdateMe(context.Background(), 3, UpdateProfileRequest{Name: &short}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Me(context.Background(), 99); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for missing user, got %v", err)
	}
}

func buildTestService(t *testing.T, repo *stubUserRepo) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{started: map[string]int64{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*models.User
}

func newStubUserRepo(seed ...*models.User) *stubUserRepo {
	repo := &stubUserRepo{nextID: 100, byEmail: map[string]*models.User{}}
	for _, u := range seed {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.NewUser) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user := dto.ToModel()
	user.ID = s.nextID
	user.IsActive = true
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.LastLoginAt = &at
	return nil
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id int64, dto users.ProfilePatch) (*models.User, error) {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Phone != nil {
		u.Phone = dto.Phone
	}
	return u, nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

type stubSessionManager struct {
	started map[string]int64
}

func (s *stubSessionManager) Start(ctx context.Context, accessID string, userID int64) error {
	s.started[accessID] = userID
	return nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.started, accessID)
	return nil
}
