package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ha1tch/automata/pkg/automaton"
	"github.com/ha1tch/automata/pkg/automatonfile"
	backend "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultRedisPrefix namespaces keys when no prefix is configured.
const DefaultRedisPrefix = "automata:"

// RedisRepository keeps automata in Redis. Each document lives under its
// own key and a sorted set indexes the names.
type RedisRepository struct {
	client *backend.Client
	prefix string
	log    zerolog.Logger
}

// NewRedisRepository connects to the server at addr.
func NewRedisRepository(addr, prefix string, log zerolog.Logger) *RedisRepository {
	return NewRedisRepositoryFromClient(backend.NewClient(&backend.Options{Addr: addr}), prefix, log)
}

// NewRedisRepositoryFromClient wraps an existing client.
func NewRedisRepositoryFromClient(client *backend.Client, prefix string, log zerolog.Logger) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisRepository{client: client, prefix: prefix, log: log}
}

func (r *RedisRepository) key(name string) string {
	return r.prefix + "doc:" + name
}

func (r *RedisRepository) indexKey() string {
	return r.prefix + "index"
}

// Save stores a under name.
func (r *RedisRepository) Save(ctx context.Context, name string, a *automaton.Automaton) error {
	if err := checkName(name); err != nil {
		return err
	}
	data, err := automatonfile.ToJSON(a, false)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.key(name), data, 0)
	// equal scores keep the index in lexical order
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: 0, Member: name})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}

	r.log.Debug().Str("name", name).Int("bytes", len(data)).Msg("saved")
	return nil
}

// Load reads a stored automaton.
func (r *RedisRepository) Load(ctx context.Context, name string) (*automaton.Automaton, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	val, err := r.client.Get(ctx, r.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return automatonfile.ParseJSON(val)
}

// Delete removes a stored automaton.
func (r *RedisRepository) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.key(name))
	pipe.ZRem(ctx, r.indexKey(), name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	if del.Val() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	r.log.Debug().Str("name", name).Msg("deleted")
	return nil
}

// List returns the stored names.
func (r *RedisRepository) List(ctx context.Context) ([]string, error) {
	names, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}
	return names, nil
}

// Close closes the client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
