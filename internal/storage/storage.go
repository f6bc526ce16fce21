// Package storage keeps a library of named automata.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ha1tch/automata/internal/config"
	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no automaton is stored under a name.
	ErrNotFound = errors.New("automaton not found")

	// ErrInvalidName is returned for names that cannot be stored.
	ErrInvalidName = errors.New("invalid name")
)

// Repository stores automata by name.
type Repository interface {
	// Save stores a, replacing anything already saved under name.
	Save(ctx context.Context, name string, a *automaton.Automaton) error
	Load(ctx context.Context, name string) (*automaton.Automaton, error)
	Delete(ctx context.Context, name string) error
	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Open creates the repository selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage, log zerolog.Logger) (Repository, error) {
	log = log.With().Str("component", "storage").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileRepository(cfg.Path, log), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.Path, log)
	case config.DriverRedis:
		return NewRedisRepository(cfg.RedisAddr, cfg.RedisPrefix, log), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func checkName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
