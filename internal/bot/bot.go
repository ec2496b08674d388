package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"group-stats-bot/internal/binding"
	"group-stats-bot/internal/repository"
	"group-stats-bot/internal/service"
)

const dateLayout = "2006-01-02"

// Bot aggregates the Telegram API with the counting services.
type Bot struct {
	api      *tgbotapi.BotAPI
	bindings *binding.Store
	bindSvc  *service.BindingService
	ingest   *service.IngestService
	reports  *service.ReportService
	stats    *repository.StatsRepository
	loc      *time.Location
}

func New(api *tgbotapi.BotAPI, bindings *binding.Store, bindSvc *service.BindingService, ingest *service.IngestService, reports *service.ReportService, stats *repository.StatsRepository, loc *time.Location) *Bot {
	return &Bot{
		api:      api,
		bindings: bindings,
		bindSvc:  bindSvc,
		ingest:   ingest,
		reports:  reports,
		stats:    stats,
		loc:      loc,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			return b.handleStart(msg)
		case "bind":
			return b.handleBind(msg)
		case "report":
			return b.handleReport(ctx, msg)
		}
		// Unknown commands fall through to counting, same as any text.
	}

	outcome, err := b.ingest.Handle(ctx, eventFromMessage(msg))
	if err != nil {
		return err
	}
	if outcome == service.OutcomeGroupBound {
		return b.sendText(msg.Chat.ID, "Group ID saved. Now use the /bind command in a private chat with the bot.")
	}
	return nil
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "Hi! I count messages in a group. Use the /bind command in a private chat to bind me to a group.")
}

func (b *Bot) handleBind(msg *tgbotapi.Message) error {
	if !msg.Chat.IsPrivate() {
		return b.sendText(msg.Chat.ID, "This command can only be used in a private chat with the bot.")
	}

	groupID, ok := b.bindings.GroupID()
	if !ok {
		return b.sendText(msg.Chat.ID, "To bind the bot, first mention it in the group, then use the /bind command in a private chat.")
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: groupID,
			UserID: msg.From.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("get chat member %d of %d: %w", msg.From.ID, groupID, err)
	}

	if err := b.bindSvc.BindAdmin(msg.From.ID, member.Status); err != nil {
		if errors.Is(err, service.ErrNotAuthorized) {
			return b.sendText(msg.Chat.ID, "You must be a group administrator to bind the bot.")
		}
		return err
	}

	return b.sendText(msg.Chat.ID, "The bot is now bound to the group.")
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	if !msg.Chat.IsPrivate() {
		return b.sendText(msg.Chat.ID, "This command can only be used in a private chat with the bot.")
	}

	if _, ok := b.bindings.GroupID(); !ok {
		return b.sendText(msg.Chat.ID, "The bot is not bound to any group.")
	}

	date := time.Now().In(b.loc).Format(dateLayout)
	text, err := b.reports.Generate(ctx, date)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Failed to generate the report: %s", err))
	}
	return b.sendMarkdown(msg.Chat.ID, text)
}

// RunDailyCycle delivers the report for the day that just ended to the
// bound admin, then clears all counters. The report is skipped when no
// admin is bound, and a report failure never skips the reset.
func (b *Bot) RunDailyCycle(ctx context.Context) error {
	date := time.Now().In(b.loc).AddDate(0, 0, -1).Format(dateLayout)

	if adminID, ok := b.bindings.AdminID(); ok {
		text, err := b.reports.Generate(ctx, date)
		if err != nil {
			log.Printf("daily report for %s: %v", date, err)
		} else if err := b.sendMarkdown(adminID, text); err != nil {
			log.Printf("send daily report to %d: %v", adminID, err)
		}
	}

	if err := b.stats.ResetAll(ctx); err != nil {
		return err
	}
	log.Println("[info] statistics reset")
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

func eventFromMessage(msg *tgbotapi.Message) service.Event {
	e := service.Event{
		ChatID:      msg.Chat.ID,
		ChatType:    msg.Chat.Type,
		Text:        msg.Text,
		HasPhoto:    len(msg.Photo) > 0,
		HasVideo:    msg.Video != nil,
		HasDocument: msg.Document != nil,
		HasAudio:    msg.Audio != nil,
		HasVoice:    msg.Voice != nil,
	}
	if msg.From != nil {
		e.From = service.Sender{
			ID:        msg.From.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		}
	}
	return e
}
