// Package web is the JSON admin API over the scheduler and ledger.
// Authorization happens upstream; the acting admin arrives as the
// X-Actor-ID header.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	mathrand "math/rand"
	"net/http"
	"time"

	"pointsboard/internal/adapters/clock"
	"pointsboard/internal/adapters/email"
	"pointsboard/internal/adapters/http/middleware"
	adminlogStore "pointsboard/internal/adapters/storage/adminlog"
	ledgerStore "pointsboard/internal/adapters/storage/ledger"
	memberStore "pointsboard/internal/adapters/storage/member"
	rotationStore "pointsboard/internal/adapters/storage/rotation"
	"pointsboard/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore    memberStore.Store
	SelectionStore rotationStore.SelectionStore
	HistoryStore   rotationStore.HistoryStore
	LedgerStore    ledgerStore.Store
	LogStore       adminlogStore.Store
}

// Options configures the HTTP adapter.
type Options struct {
	Clock              *clock.Provider
	Rand               *mathrand.Rand // nil seeds from the wall clock
	Sender             email.Sender
	EmailFrom          string
	AnnounceTo         []string
	CSRFKey            []byte
	RateLimitPerSecond int
	SecureCookies      bool
}

// api carries the wired dependencies behind the handlers.
type api struct {
	stores    *Stores
	clock     *clock.Provider
	rng       *mathrand.Rand
	announcer *orchestrators.AnnounceSpeakersDeps
}

// LoadCSRFKey decodes a hex-encoded 32-byte CSRF secret. In production
// the key MUST be set; in development a random per-startup key is used.
func LoadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CSRF key must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("CSRF key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (tokens won't survive restart)")
	return key
}

// NewMux wires HTTP handlers for the admin API.
func NewMux(s *Stores, opts Options) http.Handler {
	a := &api{stores: s, clock: opts.Clock, rng: opts.Rand}
	if opts.Sender != nil && len(opts.AnnounceTo) > 0 {
		a.announcer = &orchestrators.AnnounceSpeakersDeps{
			Sender: opts.Sender,
			From:   opts.EmailFrom,
			To:     opts.AnnounceTo,
		}
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	rate := opts.RateLimitPerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, time.Second)

	// Apply middleware: SecurityHeaders -> CSRF -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies),
		middleware.RateLimit(limiter),
	)
}
