package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrHeld is returned when the key is already locked by someone else.
	ErrHeld = errors.New("lock is held")
	// ErrLost is the cancellation cause of a lock context whose lock expired
	// before it was released.
	ErrLost = errors.New("lock lost")
)

// Release frees a lock obtained by Acquire.
type Release func(ctx context.Context) error

// Locker grants exclusive, non-blocking ownership of a key. The returned
// context is derived from ctx and is cancelled with cause ErrLost if
// ownership ends before Release is called. Work guarded by the lock should
// run under that context.
type Locker interface {
	Acquire(ctx context.Context, key string) (context.Context, Release, error)
}

// Config holds configuration for the lock backend.
type Config struct {
	// Driver selects the backend (local, redis).
	Driver string `mapstructure:"driver" default:"local"`
	// Addr is the redis address.
	Addr string `mapstructure:"addr" default:"localhost:6379"`
	// Password is the redis password.
	Password string `mapstructure:"password" default:""`
	// DB is the redis database index.
	DB int `mapstructure:"db" default:"0"`
	// TTLSeconds is the lifetime of a redis lock between refreshes.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
	// Prefix namespaces the redis keys.
	Prefix string `mapstructure:"prefix" default:"commerce-sync:lock:"`
}

const (
	DriverLocal = "local"
	DriverRedis = "redis"
)

// New builds the configured locker. The returned close func releases
// backend resources.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Locker, func() error, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocal(), func() error { return nil }, nil
	case DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		ttl := time.Duration(cfg.TTLSeconds) * time.Second
		return NewRedis(redislock.New(rdb), cfg.Prefix, ttl, logger), rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported lock driver %q", cfg.Driver)
	}
}

// Local is an in-process Locker.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocal creates an empty in-process locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

// Acquire locks key or fails with ErrHeld. A local lock is never lost, so
// the returned context is ctx itself.
func (l *Local) Acquire(ctx context.Context, key string) (context.Context, Release, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, nil, ErrHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return ctx, func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, nil
}

// Redis is a Locker shared by every process using the same redis.
// Held locks are refreshed at half their TTL until released.
type Redis struct {
	client *redislock.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis wraps a redislock client.
func NewRedis(client *redislock.Client, prefix string, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, logger: logger}
}

// Acquire obtains the redis lock for key or fails with ErrHeld.
func (r *Redis) Acquire(ctx context.Context, key string) (context.Context, Release, error) {
	l, err := r.client.Obtain(ctx, r.prefix+key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, nil, ErrHeld
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	lockCtx, cancel := context.WithCancelCause(ctx)
	refresh := func(ctx context.Context) error {
		return l.Refresh(ctx, r.ttl, nil)
	}
	lost := func(err error) {
		r.logger.Error("Lock refresh failed, cancelling holder",
			zap.String("key", key),
			zap.Error(err))
		cancel(ErrLost)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		keepAlive(stop, r.ttl/2, refresh, lost)
	}()

	var once sync.Once
	return lockCtx, func(ctx context.Context) error {
		var err error
		once.Do(func() {
			close(stop)
			<-done
			cancel(nil)
			err = l.Release(ctx)
			if errors.Is(err, redislock.ErrLockNotHeld) {
				err = nil
			}
		})
		return err
	}, nil
}

// keepAlive calls refresh every interval until stop is closed. The first
// failed refresh is handed to lost and ends the loop.
func keepAlive(stop <-chan struct{}, interval time.Duration, refresh func(context.Context) error, lost func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := refresh(context.Background()); err != nil {
				lost(err)
				return
			}
		}
	}
}
