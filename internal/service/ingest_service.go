package service

import (
	"context"
	"log"
	"strings"
	"time"

	"group-stats-bot/internal/binding"
	"group-stats-bot/internal/model"
	"group-stats-bot/internal/repository"
)

const dateLayout = "2006-01-02"

// Sender identifies the author of an inbound event.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Event is one inbound chat message, reduced to what counting needs.
type Event struct {
	ChatID      int64
	ChatType    string // private, group or supergroup
	From        Sender
	Text        string
	HasPhoto    bool
	HasVideo    bool
	HasDocument bool
	HasAudio    bool
	HasVoice    bool
}

// Outcome tells the transport layer what Handle did with an event.
type Outcome int

const (
	// OutcomeIgnored means the event produced no side effects.
	OutcomeIgnored Outcome = iota
	// OutcomeCounted means the event was classified and counted.
	OutcomeCounted
	// OutcomeGroupBound means the event captured a new group binding and
	// the chat should be notified.
	OutcomeGroupBound
)

// kindChecks orders content markers by detection precedence. An event can
// in principle carry more than one marker; the first match wins.
var kindChecks = []struct {
	kind    model.MessageType
	present func(Event) bool
}{
	{model.TypeText, func(e Event) bool { return e.Text != "" }},
	{model.TypePhoto, func(e Event) bool { return e.HasPhoto }},
	{model.TypeVideo, func(e Event) bool { return e.HasVideo }},
	{model.TypeDocument, func(e Event) bool { return e.HasDocument }},
	{model.TypeAudio, func(e Event) bool { return e.HasAudio }},
	{model.TypeVoice, func(e Event) bool { return e.HasVoice }},
}

// ResolveKind maps an event to exactly one content kind. Events with no
// recognized marker fall back to TypeOther rather than being dropped.
func ResolveKind(e Event) model.MessageType {
	for _, check := range kindChecks {
		if check.present(e) {
			return check.kind
		}
	}
	return model.TypeOther
}

// IngestService classifies inbound events, filters them to the bound group
// and updates the statistics store.
type IngestService struct {
	bindings  *binding.Store
	users     *repository.UserRepository
	stats     *repository.StatsRepository
	botHandle string // "@username" of this bot, used for mention capture
	loc       *time.Location
}

func NewIngestService(bindings *binding.Store, users *repository.UserRepository, stats *repository.StatsRepository, botHandle string, loc *time.Location) *IngestService {
	return &IngestService{
		bindings:  bindings,
		users:     users,
		stats:     stats,
		botHandle: botHandle,
		loc:       loc,
	}
}

// Handle processes one event. Events from the bound group are counted;
// a mention of the bot in any other group captures that group's id.
// Everything else is ignored without side effects.
func (s *IngestService) Handle(ctx context.Context, e Event) (Outcome, error) {
	groupID, bound := s.bindings.GroupID()

	if !bound || e.ChatID != groupID {
		if isGroupChat(e.ChatType) && strings.Contains(e.Text, s.botHandle) {
			if err := s.bindings.SetGroupID(e.ChatID); err != nil {
				return OutcomeIgnored, err
			}
			log.Printf("[info] group id set to %d", e.ChatID)
			return OutcomeGroupBound, nil
		}
		return OutcomeIgnored, nil
	}

	kind := ResolveKind(e)
	date := time.Now().In(s.loc).Format(dateLayout)

	profile := model.User{
		UserID:    e.From.ID,
		Username:  e.From.Username,
		FirstName: e.From.FirstName,
		LastName:  e.From.LastName,
	}
	if err := s.users.Upsert(ctx, &profile); err != nil {
		return OutcomeIgnored, err
	}
	if err := s.stats.IncrementCounter(ctx, date, e.From.ID, kind); err != nil {
		return OutcomeIgnored, err
	}

	log.Printf("[info] message from user %d of type %s counted", e.From.ID, kind)
	return OutcomeCounted, nil
}

func isGroupChat(chatType string) bool {
	return chatType == "group" || chatType == "supergroup"
}
