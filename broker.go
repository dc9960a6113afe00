package celerybridge

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// BrokerConfig describes how to reach the Redis broker and how aggressively to
// retry transient failures. The zero value of every field has a sane default.
type BrokerConfig struct {
	// URL is a redis:// connection string. Defaults to redis://localhost:6379.
	URL string
	// MaxRetries caps per-command retries so a dead broker fails fast instead
	// of hanging callers. Defaults to 3.
	MaxRetries int
	// MinRetryBackoff and MaxRetryBackoff bound the exponential backoff
	// between retries. Defaults: 50ms and 2s.
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	// Logger receives connection lifecycle events. Defaults to a no-op.
	Logger Logger
}

// DefaultBrokerURL is used when BrokerConfig.URL is empty.
const DefaultBrokerURL = "redis://localhost:6379"

// NewBroker builds a long-lived Redis client from cfg. Connection drops are
// logged and retried internally with capped backoff; callers only observe a
// failure when an individual command exhausts its retries and returns an error.
// The client multiplexes commands and is safe for concurrent use; construct one
// per process and share it.
func NewBroker(cfg BrokerConfig) (*redis.Client, error) {
	url := cfg.URL
	if url == "" {
		url = DefaultBrokerURL
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	opt.MaxRetries = cfg.MaxRetries
	if opt.MaxRetries == 0 {
		opt.MaxRetries = 3
	}
	opt.MinRetryBackoff = cfg.MinRetryBackoff
	if opt.MinRetryBackoff == 0 {
		opt.MinRetryBackoff = 50 * time.Millisecond
	}
	opt.MaxRetryBackoff = cfg.MaxRetryBackoff
	if opt.MaxRetryBackoff == 0 {
		opt.MaxRetryBackoff = 2 * time.Second
	}

	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}
	opt.OnConnect = func(ctx context.Context, cn *redis.Conn) error {
		log.Infof("connected to redis addr=%s", opt.Addr)
		return nil
	}

	rdb := redis.NewClient(opt)
	rdb.AddHook(connLogHook{log: log})
	return rdb, nil
}

// connLogHook surfaces dial failures through the Logger. Command errors are
// left to callers; only the connection lifecycle is logged here.
type connLogHook struct {
	log Logger
}

func (h connLogHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.log.Errorf("redis connection error addr=%s err=%v", addr, err)
		}
		return conn, err
	}
}

func (h connLogHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h connLogHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}
