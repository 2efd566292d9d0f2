package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"lesson-bot/app"
	"lesson-bot/broadcast"
	"lesson-bot/config"
	"lesson-bot/handlers"
	"lesson-bot/logger"
	"lesson-bot/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New("main")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Telegram.Validate(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warnf("⚠️ Failed to load timezone %s: %v (using UTC)", cfg.Timezone, err)
		loc = time.UTC
	}
	log.Infof("🌍 Timezone set to %s (current time: %s)", loc, time.Now().In(loc).Format("2006-01-02 15:04:05 MST"))

	rec, err := metrics.NewPromRecorder()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	a, err := app.New(ctx, cfg, rec)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Errorf("storage close: %v", err)
		}
	}()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = cfg.Telegram.Debug
	log.Infof("🤖 Authorized on account %s", bot.Self.UserName)

	if cfg.HTTP.Addr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.HTTP.Addr, metrics.NewRouter(a.Cache, nil), logger.New("ops")); err != nil {
				log.Errorf("ops server: %v", err)
			}
		}()
	}

	// Загружаем документ заранее, чтобы первый пользователь не ждал
	if !a.Cache.EnsureFresh(ctx, false) {
		log.Warnf("⚠️ Initial schedule load failed, will retry on first query")
	}

	bc := broadcast.New(bot, a.Store, logger.New("broadcast"))
	handler := handlers.New(bot, a.Store, a.Service, bc, cfg.Telegram.AdminID, logger.New("handlers"))
	handler.Now = func() time.Time { return time.Now().In(loc) }
	defer handler.Wait()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Infof("✅ Bot is running...")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			log.Infof("👋 Shutting down")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			handler.HandleUpdate(ctx, update)
		}
	}
}
