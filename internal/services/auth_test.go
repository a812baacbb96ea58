package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillforge/skillforge-backend/internal/db"
	"github.com/skillforge/skillforge-backend/internal/logger"
	"github.com/skillforge/skillforge-backend/internal/repos"
	"github.com/skillforge/skillforge-backend/internal/requestdata"
	"github.com/skillforge/skillforge-backend/internal/types"
)

func newAuthService(t *testing.T) (AuthService, *gorm.DB) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gdb, log)
	tokenRepo := repos.NewUserTokenRepo(gdb, log)
	svc := NewAuthService(gdb, log, userRepo, tokenRepo, "test-secret", time.Hour, 24*time.Hour)
	return svc, gdb
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user := &types.User{
		Email:     "Ada@Example.COM",
		Password:  "supersecret",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "supersecret" {
		t.Fatalf("password stored in plain text")
	}

	if _, _, err := svc.LoginUser(ctx, "ada@example.com", "wrong-password"); err == nil {
		t.Fatalf("expected login failure on bad password")
	}

	access, refresh, err := svc.LoginUser(ctx, "ADA@example.com", "supersecret")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatalf("expected both tokens")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		user types.User
	}{
		{"bad email", types.User{Email: "not-an-email", Password: "supersecret", FirstName: "A", LastName: "B"}},
		{"short password", types.User{Email: "a@b.com", Password: "short", FirstName: "A", LastName: "B"}},
		{"missing name", types.User{Email: "a@b.com", Password: "supersecret"}},
	}
	for _, tc := range cases {
		u := tc.user
		if err := svc.RegisterUser(ctx, &u); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	first := &types.User{Email: "dup@example.com", Password: "supersecret", FirstName: "A", LastName: "B"}
	if err := svc.RegisterUser(ctx, first); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	second := &types.User{Email: "DUP@example.com", Password: "supersecret", FirstName: "C", LastName: "D"}
	if err := svc.RegisterUser(ctx, second); err == nil {
		t.Fatalf("expected duplicate email rejection")
	}
}

func TestLoginReplacesPriorSession(t *testing.T) {
	svc, gdb := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "solo@example.com", Password: "supersecret", FirstName: "A", LastName: "B"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "solo@example.com", "supersecret"); err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, _, err := svc.LoginUser(ctx, "solo@example.com", "supersecret"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	var n int64
	if err := gdb.Model(&types.UserToken{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one token row per user, got %d", n)
	}
}

func TestSetContextFromTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "ctx@example.com", Password: "supersecret", FirstName: "A", LastName: "B"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	access, refresh, err := svc.LoginUser(ctx, "ctx@example.com", "supersecret")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authed, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(authed)
	if rd == nil {
		t.Fatalf("request data missing from context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("wrong user in context: %s", rd.UserID)
	}
	if rd.RefreshToken != refresh {
		t.Fatalf("refresh token not carried into context")
	}

	if _, err := svc.SetContextFromToken(ctx, "garbage.token.here"); err == nil {
		t.Fatalf("expected error for forged token")
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, gdb := newAuthService(t)
	ctx := context.Background()

	user := &types.User{Email: "out@example.com", Password: "supersecret", FirstName: "A", LastName: "B"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	access, _, err := svc.LoginUser(ctx, "out@example.com", "supersecret")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}

	authed, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if err := svc.LogoutUser(authed); err != nil {
		t.Fatalf("LogoutUser: %v", err)
	}

	var n int64
	if err := gdb.Model(&types.UserToken{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected session removed, got %d rows", n)
	}

	if _, err := svc.SetContextFromToken(ctx, access); err == nil {
		t.Fatalf("expected stale token rejected after logout")
	}
}
