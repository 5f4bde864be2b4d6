// server runs the socket gateway: it serves websocket connections on WS_ADDR
// and dispatches user.* procedure calls into the service layer.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/NaderBhrr/NodeBB/internal/audit"
	auditrepo "github.com/NaderBhrr/NodeBB/internal/audit/repository"
	"github.com/NaderBhrr/NodeBB/internal/config"
	"github.com/NaderBhrr/NodeBB/internal/db"
	"github.com/NaderBhrr/NodeBB/internal/hooks"
	"github.com/NaderBhrr/NodeBB/internal/mailer"
	modrepo "github.com/NaderBhrr/NodeBB/internal/moderation/repository"
	"github.com/NaderBhrr/NodeBB/internal/privileges"
	privrepo "github.com/NaderBhrr/NodeBB/internal/privileges/repository"
	"github.com/NaderBhrr/NodeBB/internal/rate"
	"github.com/NaderBhrr/NodeBB/internal/reset"
	"github.com/NaderBhrr/NodeBB/internal/security"
	"github.com/NaderBhrr/NodeBB/internal/sockets"
	telemetryotel "github.com/NaderBhrr/NodeBB/internal/telemetry/otel"
	"github.com/NaderBhrr/NodeBB/internal/unread"
	uploadsrepo "github.com/NaderBhrr/NodeBB/internal/uploads/repository"
	usersrepo "github.com/NaderBhrr/NodeBB/internal/users/repository"
)

// socketTokenTTL is how long a handshake token stays valid once issued.
const socketTokenTTL = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "nodebb-sockets", false)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	users := usersrepo.NewPostgresRepository(conn)
	moderators := privrepo.NewPostgresRepository(conn)
	notes := modrepo.NewPostgresRepository(conn)
	uploads := uploadsrepo.NewPostgresRepository(conn)
	evaluator := privileges.NewOPAEvaluator(users, moderators)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(conn))
	mail := mailer.NewAPIClient(cfg.MailAPIKey, cfg.MailAPIURL, cfg.MailFrom)

	// Hook events go to Kafka when brokers are configured, otherwise to the
	// OTel log pipeline so they are never silently lost.
	var dispatcher hooks.Dispatcher
	kafkaDispatcher, err := hooks.NewKafkaDispatcher(cfg.HooksKafkaBrokersList(), cfg.HooksKafkaTopic)
	if err != nil {
		log.Fatalf("hooks: %v", err)
	}
	if kafkaDispatcher != nil {
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher
	} else {
		dispatcher = telemetryotel.NewHookEmitter(providers.LoggerProvider)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	resetLimiter := rate.New(rdb, "reset-send", rate.Config{
		MaxAttempts: cfg.ResetMaxSends,
		Window:      cfg.ResetRateWindowDuration(),
	})
	resetService := reset.NewService(
		users, reset.NewRedisStore(rdb), resetLimiter, hasher, mail, auditLogger, dispatcher,
		reset.Config{
			Disabled:  cfg.PasswordResetDisabled,
			Cooldown:  cfg.ResetSendCooldownDuration(),
			CodeTTL:   cfg.ResetCodeTTLDuration(),
			PublicURL: cfg.PublicURL,
		},
	)

	tracker := unread.NewRedisTracker(rdb)
	aggregator := unread.NewAggregator(tracker, tracker, tracker)

	procedures := sockets.NewUserProcedures(
		users, evaluator, resetService, aggregator, notes, uploads, mail, auditLogger,
		cfg.EmailConfirmationEnabled, cfg.PublicURL,
	)
	registry, err := sockets.NewRegistry(sockets.NewDeprecationNotifier(), procedures.Procedures()...)
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	var validator sockets.TokenValidator
	if cfg.JWTPublicKey != "" {
		publicKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt public key: %v", err)
		}
		provider := security.NewTokenProvider(nil, publicKey, cfg.JWTIssuer, cfg.JWTAudience, socketTokenTTL)
		if cfg.JWTPrivateKey != "" {
			privateKey, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
			if err != nil {
				log.Fatalf("jwt private key: %v", err)
			}
			provider = security.NewTokenProvider(privateKey, publicKey, cfg.JWTIssuer, cfg.JWTAudience, socketTokenTTL)
		}
		validator = provider
	} else {
		log.Println("JWT_PUBLIC_KEY is not set; all socket connections are anonymous")
	}

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", sockets.NewServer(registry, validator))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              cfg.WSAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("socket gateway listening on %s", cfg.WSAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down socket gateway...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("socket gateway stopped")
}
