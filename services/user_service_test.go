package services

import (
	"testing"
	"time"
	"tradecal/models"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()

	db := TestDB()
	if db == nil {
		t.Fatal("Failed to create test database")
	}
	t.Cleanup(func() { db.Close() })

	return NewUserService(db)
}

func TestCreateUser_AndLookup(t *testing.T) {
	users := newUserService(t)

	email := "local@example.com"
	hash := "bcrypt-hash"
	now := time.Now()
	user := &models.User{
		Email:        &email,
		Nickname:     "local",
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Expected user ID to be assigned")
	}

	got, err := users.GetUserByEmail(email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID || got.Nickname != "local" {
		t.Errorf("Lookup mismatch: %+v", got)
	}

	exists, err := users.EmailExists(email)
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected email to exist")
	}

	exists, err = users.EmailExists("nobody@example.com")
	if err != nil {
		t.Fatalf("EmailExists failed: %v", err)
	}
	if exists {
		t.Error("Unknown email reported as existing")
	}
}

func TestFindOrCreateOAuthUser_CreatesNew(t *testing.T) {
	users := newUserService(t)

	user, err := users.FindOrCreateOAuthUser("google", "g-123", "oauth@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateOAuthUser failed: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("Expected a new user to be created")
	}
	if user.OAuthProvider == nil || *user.OAuthProvider != "google" {
		t.Errorf("Expected oauth_provider google, got %v", user.OAuthProvider)
	}
	if user.PasswordHash != nil {
		t.Error("OAuth-only user must have no local password")
	}
}

func TestFindOrCreateOAuthUser_FindsByProviderID(t *testing.T) {
	users := newUserService(t)

	first, err := users.FindOrCreateOAuthUser("google", "g-123", "oauth@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateOAuthUser failed: %v", err)
	}

	// Same provider identity, different email: must resolve to the same row
	second, err := users.FindOrCreateOAuthUser("google", "g-123", "renamed@example.com")
	if err != nil {
		t.Fatalf("FindOrCreateOAuthUser failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("Expected same user id, got %d and %d", first.ID, second.ID)
	}
}

func TestFindOrCreateOAuthUser_LinksByEmail(t *testing.T) {
	users := newUserService(t)

	// Existing local account
	email := "shared@example.com"
	hash := "bcrypt-hash"
	now := time.Now()
	local := &models.User{
		Email:        &email,
		Nickname:     "local",
		PasswordHash: &hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.CreateUser(local); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// OAuth login with the same email merges into the local account
	linked, err := users.FindOrCreateOAuthUser("google", "g-456", email)
	if err != nil {
		t.Fatalf("FindOrCreateOAuthUser failed: %v", err)
	}
	if linked.ID != local.ID {
		t.Fatalf("Expected OAuth login to link to existing user %d, got %d", local.ID, linked.ID)
	}
	if linked.OAuthProviderID == nil || *linked.OAuthProviderID != "g-456" {
		t.Errorf("Expected linked provider id g-456, got %v", linked.OAuthProviderID)
	}

	// Local credentials stay intact after linking
	got, err := users.GetUserByID(local.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.PasswordHash == nil || *got.PasswordHash != hash {
		t.Error("Linking OAuth must not touch the local password hash")
	}
}

func TestUpdateProfileImage(t *testing.T) {
	users := newUserService(t)

	email := "avatar@example.com"
	now := time.Now()
	user := &models.User{Email: &email, Nickname: "a", CreatedAt: now, UpdatedAt: now}
	if err := users.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := users.UpdateProfileImage(user.ID, "/uploads/abc.png"); err != nil {
		t.Fatalf("UpdateProfileImage failed: %v", err)
	}

	got, err := users.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.ProfileImage == nil || *got.ProfileImage != "/uploads/abc.png" {
		t.Errorf("Expected profile image to be stored, got %v", got.ProfileImage)
	}

	if err := users.UpdateProfileImage(99999, "/uploads/zzz.png"); err == nil {
		t.Error("Expected error when updating a nonexistent user")
	}
}
