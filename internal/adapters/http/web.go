package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"chemistmap/internal/adapters/email"
	"chemistmap/internal/adapters/http/metrics"
	"chemistmap/internal/adapters/http/middleware"
	"chemistmap/internal/adapters/http/perf"
	accountStore "chemistmap/internal/adapters/storage/account"
	adminStore "chemistmap/internal/adapters/storage/admin"
	auditStore "chemistmap/internal/adapters/storage/audit"
	broadcastStore "chemistmap/internal/adapters/storage/broadcast"
	memberStore "chemistmap/internal/adapters/storage/member"
	noteStore "chemistmap/internal/adapters/storage/note"
	"chemistmap/internal/domain/adminkey"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore   accountStore.Store
	AdminStore     adminStore.Store
	MemberStore    memberStore.Store
	NoteStore      noteStore.Store
	BroadcastStore broadcastStore.Store
	AuditStore     auditStore.Store
}

// Options configures NewMux.
type Options struct {
	AdminKey       adminkey.Key
	CSRFKey        []byte // 32 bytes
	Secure         bool   // production: Secure cookies and HTTPS-only CSRF checks
	TrustedOrigins []string
	RateLimit      int // requests per second per IP; 0 selects RateLimitPerSecond
	SlowRequestMs  int
	Metrics        *metrics.Metrics
	Collector      *perf.Collector
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// adminKey gates destructive and transfer actions (set by NewMux).
var adminKey adminkey.Key

// RateLimitPerSecond is the per-IP rate limit used when Options.RateLimit is 0.
var RateLimitPerSecond = 10

var appMetrics *metrics.Metrics

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// NewMux wires HTTP handlers for the app.
// PRE: s holds every store; opts.CSRFKey is 32 bytes
// POST: Returns the root handler with the middleware chain applied
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	adminKey = opts.AdminKey
	appMetrics = opts.Metrics
	perfCollector = opts.Collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = opts.Secure

	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	registerRoutes(mux)

	rate := opts.RateLimit
	if rate <= 0 {
		rate = RateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Applied inner to outer: the timing middleware sees every request first.
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.Secure, opts.TrustedOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequestMs, opts.Metrics),
	)
}
