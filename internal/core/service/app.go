package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/safad/worklog/internal/core/ports"
)

// Options tunes how an App is opened. The zero value is usable.
type Options struct {
	// Clock defaults to the system clock.
	Clock ports.Clock
	// Location decides which calendar day a record falls on. Defaults to UTC.
	Location *time.Location
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// SimulatedLatency delays Register and Login.
	SimulatedLatency time.Duration
	Logger           *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	return o
}

// App is the application state: one directory and one ledger sharing a
// store. It replaces any package-level session or collection.
type App struct {
	Directory *Directory
	Ledger    *Ledger

	store ports.KVStore
	loc   *time.Location
	clock ports.Clock
}

// Open loads the directory and the ledger from store, seeding the admin
// account when no users are stored. Absent or malformed documents fall back
// to their defaults; only store failures are returned.
func Open(ctx context.Context, store ports.KVStore, opts Options) (*App, error) {
	opts = opts.withDefaults()

	dir, err := loadDirectory(ctx, store, opts)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	ledger, err := loadLedger(ctx, store, dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	opts.Logger.Debug().
		Int("users", len(dir.users)).
		Int("records", len(ledger.records)).
		Bool("session", dir.session != nil).
		Msg("state loaded")

	return &App{
		Directory: dir,
		Ledger:    ledger,
		store:     store,
		loc:       opts.Location,
		clock:     opts.Clock,
	}, nil
}

// Store returns the backing store, e.g. for health checks.
func (a *App) Store() ports.KVStore { return a.store }

// Location is the zone used for calendar days.
func (a *App) Location() *time.Location { return a.loc }

// Now reads the app clock.
func (a *App) Now() time.Time { return a.clock.Now() }

// Close releases the backing store.
func (a *App) Close() error { return a.store.Close() }

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to ports.Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
