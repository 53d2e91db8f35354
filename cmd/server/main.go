package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "chemistmap/internal/adapters/email"
	web "chemistmap/internal/adapters/http"
	"chemistmap/internal/adapters/http/metrics"
	"chemistmap/internal/adapters/http/perf"
	"chemistmap/internal/adapters/storage"
	accountStore "chemistmap/internal/adapters/storage/account"
	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	broadcastStore "chemistmap/internal/adapters/storage/broadcast"
	memberStore "chemistmap/internal/adapters/storage/member"
	noteStore "chemistmap/internal/adapters/storage/note"
	"chemistmap/internal/application/orchestrators"
	"chemistmap/internal/config"
	"chemistmap/internal/domain/adminkey"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "", "optional YAML config overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	secret, err := cfg.ResolveAdminKey()
	if err != nil {
		log.Fatalf("admin key: %v", err)
	}
	key, err := adminkey.New(secret)
	if err != nil {
		log.Fatalf("admin key: %v", err)
	}
	csrfKey, err := cfg.ResolveCSRFKey()
	if err != nil {
		log.Fatalf("csrf key: %v", err)
	}

	// WAL mode, foreign keys and a busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:   acctStore,
		AdminStore:     adminStore.NewSQLiteStore(timedDB),
		MemberStore:    memberStore.NewSQLiteStore(timedDB),
		NoteStore:      noteStore.NewSQLiteStore(timedDB),
		BroadcastStore: broadcastStore.NewSQLiteStore(timedDB),
		AuditStore:     auditStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	seedDeps := orchestrators.CreateAccountDeps{
		AccountStore: acctStore,
		GenerateID:   func() string { return uuid.New().String() },
		Now:          time.Now,
	}
	if err := orchestrators.ExecuteSeedOperator(ctx, seedDeps, cfg.OperatorEmail, cfg.OperatorPassword); err != nil {
		log.Fatalf("failed to seed operator: %v", err)
	}

	if !cfg.IsProduction() {
		synDeps := orchestrators.SyntheticSeedDeps{
			AdminStore:  stores.AdminStore,
			MemberStore: stores.MemberStore,
			NoteStore:   stores.NoteStore,
			Now:         time.Now,
		}
		if err := orchestrators.ExecuteSeedSynthetic(ctx, synDeps); err != nil {
			log.Fatalf("failed to seed synthetic data: %v", err)
		}
		log.Println("Synthetic seed data loaded (dev mode)")
	}

	if cfg.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom), cfg.ResendFrom, cfg.ReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.ResendFrom, cfg.ReplyTo)
		if cfg.IsProduction() {
			log.Println("WARNING: CHEMIST_RESEND_KEY is not set, broadcasts are recorded but not delivered")
		} else {
			log.Println("Email sender configured (noop, set CHEMIST_RESEND_KEY for real delivery)")
		}
	}

	mux := web.NewMux(stores, web.Options{
		AdminKey:      key,
		CSRFKey:       csrfKey,
		Secure:        cfg.IsProduction(),
		RateLimit:     cfg.RateLimit,
		SlowRequestMs: cfg.SlowRequestMs,
		Metrics:       metrics.New(),
		Collector:     collector,
	})

	log.Printf("Chemist MAP %s starting on %s (env=%s, schema=%d)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion())
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
