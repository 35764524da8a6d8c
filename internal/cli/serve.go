package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpsDeck/OpsDeck/internal/agents"
	"github.com/OpsDeck/OpsDeck/internal/billing"
	"github.com/OpsDeck/OpsDeck/internal/config"
	"github.com/OpsDeck/OpsDeck/internal/events"
	"github.com/OpsDeck/OpsDeck/internal/mailer"
	"github.com/OpsDeck/OpsDeck/internal/notify"
	"github.com/OpsDeck/OpsDeck/internal/server"
	"github.com/OpsDeck/OpsDeck/internal/sheets"
	"github.com/OpsDeck/OpsDeck/internal/store"
	"github.com/OpsDeck/OpsDeck/internal/tasks"
	"github.com/OpsDeck/OpsDeck/internal/warroom"
)

var serveDebug bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "enable debug logging")
}

func runServe(cmd *cobra.Command, args []string) {
	printHeader("🌐 OpsDeck Server")
	fmt.Println("Starting OpsDeck...")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if serveDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// 2. State store
	st := store.Open(cfg.Paths.State, logger)

	// 3. Optional integrations
	sheet := sheets.New(cfg.Sheets.URL, cfg.Sheets.Token)
	mail := mailer.New(cfg.Mail.BaseURL, cfg.Mail.APIKey, cfg.Mail.From)
	slackMirror := notify.NewSlack(cfg.Slack.Token, cfg.Slack.Channel)

	var publisher events.Publisher = events.Noop{}
	if cfg.Events.Brokers != "" {
		kp := events.NewKafka(cfg.Events.Brokers, cfg.Events.Topic, logger)
		defer kp.Close()
		publisher = kp
		fmt.Println("📨 Event stream enabled")
	}

	// 4. Billing database
	bill, err := billing.Open(cfg.Paths.BillingDB, sheet, mail, logger)
	if err != nil {
		fmt.Printf("Billing database error: %v\n", err)
		os.Exit(1)
	}
	defer bill.Close()

	// 5. Agent directory and dispatch
	directory := agents.NewDirectory(cfg.Agents.Binary, logger)
	runner := agents.NewCLIRunner(cfg.Agents.Binary)
	if directory.Configured() {
		fmt.Println("🤖 Agent CLI: " + cfg.Agents.Binary)
	} else {
		fmt.Println("🤖 Agent CLI not configured, using built-in roster")
	}

	dispatcher := tasks.New(tasks.Options{
		Store:  st,
		Runner: runner,
		Sheet:  sheet,
		Events: publisher,
		Logger: logger,
	})
	room := warroom.New(warroom.Options{
		Store:     st,
		Directory: directory,
		Runner:    runner,
		Notifier:  slackMirror,
		Events:    publisher,
		Logger:    logger,
	})

	// 6. HTTP server
	srv := server.New(server.Options{
		Config: server.Config{
			Host:    cfg.Gateway.Host,
			Port:    cfg.Gateway.Port,
			Version: version,
			Integrations: server.Integrations{
				AgentCLI: directory.Configured(),
				Database: true,
				Sheets:   sheet.Configured(),
				Mailer:   mail.Configured(),
				Slack:    slackMirror.Configured(),
				Events:   cfg.Events.Brokers != "",
			},
		},
		Store:      st,
		Directory:  directory,
		Dispatcher: dispatcher,
		Room:       room,
		Billing:    bill,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 Dashboard API on http://%s\n", srv.Addr())
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("👋 Shut down cleanly")
}
