package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	user := &User{
		Email:        "Alex@Example.com",
		DisplayName:  "Alex",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA",
		IsActive:     true,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if user.ID == "" {
		t.Error("ID not generated")
	}
	if user.Email != "alex@example.com" {
		t.Errorf("email not normalised: %q", user.Email)
	}

	got, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != "alex@example.com" || got.DisplayName != "Alex" || !got.IsActive {
		t.Errorf("unexpected user: %+v", got)
	}

	// Lookup is case-insensitive.
	got, err = repo.GetByEmail(context.Background(), "ALEX@example.COM")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByEmail returned wrong user: %s", got.ID)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	seedTestUser(t, db, "dup@example.com", "password-one")

	err := repo.Create(context.Background(), &User{
		Email:        "DUP@example.com",
		PasswordHash: "x",
		IsActive:     true,
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("err = %v, want ErrEmailExists", err)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	if _, err := repo.GetByID(context.Background(), "usr-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID err = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail err = %v, want ErrUserNotFound", err)
	}
	if err := repo.UpdatePassword(context.Background(), "usr-missing", "hash"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword err = %v, want ErrUserNotFound", err)
	}
	if err := repo.UpdateDisplayName(context.Background(), "usr-missing", "Name"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdateDisplayName err = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepositoryUpdatePassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	user := seedTestUser(t, db, "reset@example.com", "old-password")

	newHash, err := HashPassword("new-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := repo.UpdatePassword(context.Background(), user.ID, newHash); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	got, err := repo.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	ok, err := VerifyPassword("new-password", got.PasswordHash)
	if err != nil || !ok {
		t.Errorf("new password does not verify: ok=%v err=%v", ok, err)
	}
}

func TestUserRepositoryCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("Count = %d, want 0", count)
	}

	seedTestUser(t, db, "one@example.com", "password-one")
	seedTestUser(t, db, "two@example.com", "password-two")

	count, err = repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("Count = %d, want 2", count)
	}
}
