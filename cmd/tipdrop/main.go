package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/tipdrop/tipdrop/internal/auth"
	"github.com/tipdrop/tipdrop/internal/commerce"
	"github.com/tipdrop/tipdrop/internal/config"
	"github.com/tipdrop/tipdrop/internal/http_api"
	"github.com/tipdrop/tipdrop/internal/notificator"
	"github.com/tipdrop/tipdrop/internal/repository"
	"github.com/tipdrop/tipdrop/internal/tipdrop"
	"github.com/tipdrop/tipdrop/internal/webhook"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "tipdrop",
		Usage: "Tipdrop is a donation collection service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API listen port"},
			&cli.StringFlag{Name: "public-base-url", Aliases: []string{"b"}, Usage: "Externally reachable base URL"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
			&cli.BoolFlag{Name: "apply-pending-events", Usage: "Apply charge:pending webhook events to donation status"},
			&cli.BoolFlag{Name: "guard-terminal-status", Usage: "Refuse status transitions out of completed/failed"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("public-base-url") {
		cfg.PublicBaseURL = c.String("public-base-url")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("apply-pending-events") {
		cfg.ApplyPendingEvents = c.Bool("apply-pending-events")
	}
	if c.IsSet("guard-terminal-status") {
		cfg.GuardTerminalStatus = c.Bool("guard-terminal-status")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.Open(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := repository.Close(db); err != nil {
			log.Error("Failed to close database: ", err)
		}
	}()

	// The webhook path gets the elevated cross-tenant handle; everything
	// else works through the recipient-scoped one.
	adminStore := repository.NewAdminStore(db, log)
	userStore := repository.NewUserStore(db, log)

	// Initialize external collaborators
	charges := commerce.NewCoinbase(cfg.CommerceAPIURL, cfg.PublicBaseURL, log.Named("commerce"))
	authService := auth.NewClient(cfg.AuthURL, cfg.AuthAnonKey, log.Named("auth"))

	// Initialize notificator; channels are optional and nil when unconfigured
	var telNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" {
		telNotif, err = notificator.NewTelegramNotificator(log.Named("telegram"), cfg.TelegramBotToken, userStore)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotif *notificator.EmailNotificator
	if cfg.SMTPHost != "" {
		emailNotif = notificator.NewEmailNotificator(log.Named("email"), cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender)
	}
	notif := notificator.NewNotificator(log.Named("notificator"), telNotif, emailNotif)

	// Create Tipdrop instance
	tipdropApp := tipdrop.NewTipdrop(adminStore, userStore, charges, notif, log, cfg)

	classifier := webhook.NewClassifier(cfg.ApplyPendingEvents)
	apiServer := http_api.NewHTTPServer(tipdropApp, classifier, authService, cfg.APIPort, log)

	go apiServer.Start()

	// Wait for termination and shut down gracefully
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return apiServer.Shutdown()
}
