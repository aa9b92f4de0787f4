package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"slot-go/cogs"
	"slot-go/games/slots"
	"slot-go/gifts"
	"slot-go/utils"
)

var botStatus atomic.Value

func main() {
	botStatus.Store("starting")

	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	utils.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	var opts slots.Options

	// Reward sender is optional, but once configured its session file must exist
	if cfg.GiftsEnabled() {
		sender, err := gifts.NewSender(cfg.GiftAPIID, cfg.GiftAPIHash, cfg.GiftSessionFile)
		if err != nil {
			log.Fatalf("Gift sender unavailable: %v", err)
		}
		opts.Issuer = sender
		log.Info("Gift rewards enabled")
	}

	journal, err := utils.SetupDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("Database setup failed: %v", err)
		log.Println("Bot will continue without spin journal")
	} else if journal != nil {
		log.Println("Database connected successfully")
		defer journal.Close()
		opts.Journal = journal
	}

	if cfg.DiscordWebhookURL != "" {
		mirror, err := utils.NewDiscordMirror(cfg.DiscordWebhookURL)
		if err != nil {
			log.Printf("Discord mirror disabled: %v", err)
		} else {
			opts.Mirror = mirror
		}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}
	log.Printf("Logged in as @%s (ID: %d)", bot.Self.UserName, bot.Self.ID)

	dispatcher := utils.NewDispatcher(cogs.ClassifyTelegramError, utils.ThrottleBuffer, 0)
	transport := cogs.NewTelegramTransport(bot, dispatcher).WithMuteLedger(cogs.NewMuteLedger(cfg.MuteFile))
	if n := transport.ResumeMutes(); n > 0 {
		log.Warnf("Resumed %d jackpot mute(s) left by the previous run", n)
	}

	store := utils.NewSlotStore(cfg.DataFile)
	session := slots.NewSession(slots.Config{
		GroupID:      cfg.GroupID,
		AdminIDs:     cfg.AdminIDs,
		BotID:        bot.Self.ID,
		JackpotValue: utils.JackpotValue,
		RevealDelay:  utils.RevealDelay,
		MuteDuration: utils.MuteDuration,
	}, transport, store, opts)

	state := session.Snapshot()
	utils.BotLogf("SLOT", "Slot restored from %s: %s, %d spins", store.Path(), state.StatusWord(), state.TotalSpins)

	go startHealthServer(cfg.Port, session, dispatcher)

	botStatus.Store("running")
	log.Println("Bot is now running. Press CTRL+C to exit.")
	cogs.NewSlotCog(session).Run(ctx, bot)

	log.Println("Gracefully shutting down...")
	botStatus.Store("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	transport.Close(shutdownCtx)
}

func startHealthServer(port string, session *slots.Session, dispatcher *utils.Dispatcher) {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf("Slot Bot Status: %s", botStatus.Load())))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		state := session.Snapshot()
		metrics := dispatcher.GetMetrics()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		response := fmt.Sprintf(`{"status":"healthy","service":"slot-bot","bot_status":"%s","slot_active":%t,"total_spins":%d,"throttle_events":%d}`,
			botStatus.Load(), state.Active, state.TotalSpins, metrics.ThrottleEvents)
		w.Write([]byte(response))
	})

	log.Printf("Health server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Health server error: %v", err)
	}
}
