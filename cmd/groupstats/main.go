package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"group-stats-bot/internal/binding"
	"group-stats-bot/internal/bot"
	"group-stats-bot/internal/config"
	"group-stats-bot/internal/repository"
	"group-stats-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("load timezone %q: %v", cfg.Timezone, err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	bindings := binding.Open(cfg.BindingFile)
	userRepo := repository.NewUserRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("bot api: %v", err)
	}
	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	bindSvc := service.NewBindingService(bindings)
	ingestSvc := service.NewIngestService(bindings, userRepo, statsRepo, "@"+api.Self.UserName, loc)
	reportSvc := service.NewReportService(statsRepo)

	statsBot := bot.New(api, bindings, bindSvc, ingestSvc, reportSvc, statsRepo, loc)

	scheduler := service.NewSchedulerService(loc)
	if _, err := scheduler.ScheduleDaily(cfg.ReportTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := statsBot.RunDailyCycle(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("daily cycle: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule daily cycle: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Group stats bot started.")
	if err := statsBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
