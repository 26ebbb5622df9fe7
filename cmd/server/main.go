package main

import (
	"database/sql"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"pointsboard/internal/adapters/clock"
	emailPkg "pointsboard/internal/adapters/email"
	web "pointsboard/internal/adapters/http"
	"pointsboard/internal/adapters/storage"
	adminlogStore "pointsboard/internal/adapters/storage/adminlog"
	ledgerStore "pointsboard/internal/adapters/storage/ledger"
	memberStore "pointsboard/internal/adapters/storage/member"
	rotationStore "pointsboard/internal/adapters/storage/rotation"
	"pointsboard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// WAL mode, foreign keys and a busy timeout for concurrent admins.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Wrap the DB so slow queries get logged.
	timedDB := storage.NewTimedDB(db)

	stores := &web.Stores{
		MemberStore:    memberStore.NewSQLiteStore(timedDB),
		SelectionStore: rotationStore.NewSelectionSQLiteStore(timedDB),
		HistoryStore:   rotationStore.NewHistorySQLiteStore(timedDB),
		LedgerStore:    ledgerStore.NewSQLiteStore(timedDB),
		LogStore:       adminlogStore.NewSQLiteStore(timedDB),
	}

	clockProvider, err := clock.NewProvider(cfg.Timezone)
	if err != nil {
		log.Fatalf("failed to load timezone: %v", err)
	}

	var sender emailPkg.Sender
	if cfg.ResendAPIKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		log.Println("Email sender configured (noop, set POINTSBOARD_RESEND_API_KEY for real delivery)")
	}

	mux := web.NewMux(stores, web.Options{
		Clock:              clockProvider,
		Rand:               rand.New(rand.NewSource(time.Now().UnixNano())),
		Sender:             sender,
		EmailFrom:          cfg.EmailFrom,
		AnnounceTo:         cfg.AnnounceTo,
		CSRFKey:            web.LoadCSRFKey(cfg.CSRFKey, cfg.IsProduction()),
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SecureCookies:      cfg.IsProduction(),
	})

	log.Printf("Pointsboard %s starting on %s (env=%s, tz=%s)", version, cfg.Addr, cfg.Env, cfg.Timezone)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
