package repository

import (
	"context"
	"testing"

	"group-stats-bot/internal/model"
)

func TestUpsert_CreatesProfile(t *testing.T) {
	users, _ := setupTestDB(t)
	ctx := context.Background()

	err := users.Upsert(ctx, &model.User{UserID: 1, Username: "alice", FirstName: "Alice"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	stored, err := users.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Username != "alice" || stored.FirstName != "Alice" {
		t.Errorf("stored profile = %+v", stored)
	}
}

func TestUpsert_LastWriteWins(t *testing.T) {
	users, _ := setupTestDB(t)
	ctx := context.Background()

	if err := users.Upsert(ctx, &model.User{UserID: 1, Username: "alice", FirstName: "Alice", LastName: "Smith"}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if err := users.Upsert(ctx, &model.User{UserID: 1, Username: "alice_new", FirstName: "Alice", LastName: ""}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	stored, err := users.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Username != "alice_new" {
		t.Errorf("username = %q, want %q", stored.Username, "alice_new")
	}
	if stored.LastName != "" {
		t.Errorf("last name = %q, want empty (overwritten)", stored.LastName)
	}
}
