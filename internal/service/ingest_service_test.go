package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"group-stats-bot/internal/binding"
	"group-stats-bot/internal/model"
	"group-stats-bot/internal/repository"
)

const testBotHandle = "@groupstatsbot"

// newTestRepos creates a temp-file SQLite database with both repositories.
func newTestRepos(t *testing.T) (*repository.UserRepository, *repository.StatsRepository) {
	t.Helper()
	f, err := os.CreateTemp("", "group-stats-test-*.db")
	if err != nil {
		t.Fatalf("create temp db: %v", err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := repository.NewDB(f.Name())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return repository.NewUserRepository(db), repository.NewStatsRepository(db)
}

func newTestBindings(t *testing.T) *binding.Store {
	t.Helper()
	return binding.Open(filepath.Join(t.TempDir(), "config.json"))
}

func newTestIngest(t *testing.T) (*IngestService, *binding.Store, *repository.StatsRepository) {
	t.Helper()
	users, stats := newTestRepos(t)
	bindings := newTestBindings(t)
	svc := NewIngestService(bindings, users, stats, testBotHandle, time.UTC)
	return svc, bindings, stats
}

func today() string {
	return time.Now().In(time.UTC).Format(dateLayout)
}

func TestResolveKind_Precedence(t *testing.T) {
	cases := []struct {
		name  string
		event Event
		want  model.MessageType
	}{
		{"text beats photo", Event{Text: "hi", HasPhoto: true}, model.TypeText},
		{"photo beats video", Event{HasPhoto: true, HasVideo: true}, model.TypePhoto},
		{"video beats document", Event{HasVideo: true, HasDocument: true}, model.TypeVideo},
		{"document beats audio", Event{HasDocument: true, HasAudio: true}, model.TypeDocument},
		{"audio beats voice", Event{HasAudio: true, HasVoice: true}, model.TypeAudio},
		{"voice alone", Event{HasVoice: true}, model.TypeVoice},
		{"no markers falls back to other", Event{}, model.TypeOther},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveKind(tc.event); got != tc.want {
				t.Errorf("ResolveKind = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestHandle_CountsInBoundGroup(t *testing.T) {
	svc, bindings, stats := newTestIngest(t)
	ctx := context.Background()

	if err := bindings.SetGroupID(-100); err != nil {
		t.Fatalf("SetGroupID: %v", err)
	}

	event := Event{
		ChatID:   -100,
		ChatType: "supergroup",
		From:     Sender{ID: 1, Username: "alice", FirstName: "Alice"},
		Text:     "hello",
	}
	outcome, err := svc.Handle(ctx, event)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeCounted {
		t.Fatalf("outcome = %v, want OutcomeCounted", outcome)
	}

	rows, err := stats.QueryDay(ctx, today())
	if err != nil {
		t.Fatalf("QueryDay: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].MessageType != "text" || rows[0].Count != 1 {
		t.Errorf("row = %+v, want text count 1", rows[0])
	}
	if rows[0].Username == nil || *rows[0].Username != "alice" {
		t.Errorf("profile was not upserted: %+v", rows[0])
	}
}

func TestHandle_MentionBindsGroupWithoutCounting(t *testing.T) {
	svc, bindings, stats := newTestIngest(t)
	ctx := context.Background()

	event := Event{
		ChatID:   -200,
		ChatType: "group",
		From:     Sender{ID: 5},
		Text:     "hey " + testBotHandle + ", wake up",
	}
	outcome, err := svc.Handle(ctx, event)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeGroupBound {
		t.Fatalf("outcome = %v, want OutcomeGroupBound", outcome)
	}

	groupID, ok := bindings.GroupID()
	if !ok || groupID != -200 {
		t.Errorf("group id = %d (bound=%t), want -200", groupID, ok)
	}

	rows, err := stats.QueryDay(ctx, today())
	if err != nil {
		t.Fatalf("QueryDay: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("the binding event must not be counted, got %d rows", len(rows))
	}
}

func TestHandle_RebindsWhenMentionedInAnotherGroup(t *testing.T) {
	svc, bindings, _ := newTestIngest(t)
	ctx := context.Background()

	if err := bindings.SetGroupID(-100); err != nil {
		t.Fatalf("SetGroupID: %v", err)
	}

	event := Event{
		ChatID:   -300,
		ChatType: "supergroup",
		From:     Sender{ID: 5},
		Text:     testBotHandle,
	}
	outcome, err := svc.Handle(ctx, event)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if outcome != OutcomeGroupBound {
		t.Fatalf("outcome = %v, want OutcomeGroupBound", outcome)
	}
	if groupID, _ := bindings.GroupID(); groupID != -300 {
		t.Errorf("group id = %d, want -300", groupID)
	}
}

func TestHandle_IgnoresUnrelatedChats(t *testing.T) {
	svc, bindings, stats := newTestIngest(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		event Event
	}{
		{"private chat", Event{ChatID: 42, ChatType: "private", From: Sender{ID: 42}, Text: "hi"}},
		{"group without mention", Event{ChatID: -200, ChatType: "group", From: Sender{ID: 5}, Text: "just chatting"}},
		{"private chat with mention", Event{ChatID: 42, ChatType: "private", From: Sender{ID: 42}, Text: testBotHandle}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome, err := svc.Handle(ctx, tc.event)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if outcome != OutcomeIgnored {
				t.Errorf("outcome = %v, want OutcomeIgnored", outcome)
			}
		})
	}

	if _, ok := bindings.GroupID(); ok {
		t.Error("no event should have bound a group")
	}
	rows, err := stats.QueryDay(ctx, today())
	if err != nil {
		t.Fatalf("QueryDay: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("no event should have been counted, got %d rows", len(rows))
	}
}

func TestHandle_CountsEveryKind(t *testing.T) {
	svc, bindings, stats := newTestIngest(t)
	ctx := context.Background()

	if err := bindings.SetGroupID(-100); err != nil {
		t.Fatalf("SetGroupID: %v", err)
	}

	events := []Event{
		{ChatID: -100, ChatType: "group", From: Sender{ID: 1}, Text: "a"},
		{ChatID: -100, ChatType: "group", From: Sender{ID: 1}, HasPhoto: true},
		{ChatID: -100, ChatType: "group", From: Sender{ID: 1}}, // sticker etc.
	}
	for _, e := range events {
		if _, err := svc.Handle(ctx, e); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}

	rows, err := stats.QueryDay(ctx, today())
	if err != nil {
		t.Fatalf("QueryDay: %v", err)
	}
	got := make(map[string]int64)
	for _, row := range rows {
		got[row.MessageType] = row.Count
	}
	for _, kind := range []string{"text", "photo", "other"} {
		if got[kind] != 1 {
			t.Errorf("count for %s = %d, want 1", kind, got[kind])
		}
	}
}
