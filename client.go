package celerybridge

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	ikeys "github.com/celerybridge/celerybridge-go/internal/keys"
)

// Client dispatches Celery-compatible tasks to Redis and polls their results.
// It speaks the worker's wire protocol directly; no Celery client library is
// involved on this side.
type Client struct {
	rdb     redis.UniversalClient
	encoder Encoder
	queue   string
	log     Logger

	waitTimeout  time.Duration
	waitInterval time.Duration
}

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithLogger sets the logger used for dispatch and poll events.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithDefaultQueue overrides the queue QueueNamedTask targets when the caller
// does not route explicitly. The default is "celery".
func WithDefaultQueue(queue string) ClientOption {
	return func(c *Client) {
		if queue != "" {
			c.queue = queue
		}
	}
}

// WithWaitDefaults changes the timeout and poll interval WaitForCompletion
// uses when the caller does not override them per call. Non-positive values
// keep the built-in defaults (10m, 2s).
func WithWaitDefaults(timeout, interval time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.waitTimeout = timeout
		}
		if interval > 0 {
			c.waitInterval = interval
		}
	}
}

// WithEncoder replaces the codec used for result decoding.
func WithEncoder(e Encoder) ClientOption {
	return func(c *Client) {
		if e != nil {
			c.encoder = e
		}
	}
}

// NewClient creates a new bridge client on top of an established Redis
// connection (see NewBroker).
func NewClient(rdb redis.UniversalClient, opts ...ClientOption) *Client {
	c := &Client{
		rdb:          rdb,
		encoder:      &JSONEncoder{},
		queue:        ikeys.DefaultQueue,
		log:          nopLogger{},
		waitTimeout:  defaultWaitTimeout,
		waitInterval: defaultWaitInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueueTask appends an already-built wire message to the named queue and
// returns the broker-reported list length after the push. Broker errors
// propagate unchanged; retry policy belongs to the caller.
func (c *Client) QueueTask(ctx context.Context, queue, wire string) (int64, error) {
	if queue == "" {
		return 0, ErrEmptyQueue
	}
	n, err := c.rdb.RPush(ctx, queue, wire).Result()
	if err != nil {
		c.log.Errorf("dispatch failed queue=%s bytes=%d err=%v", queue, len(wire), err)
		return 0, err
	}
	c.log.Infof("dispatched queue=%s bytes=%d depth=%d", queue, len(wire), n)
	return n, nil
}

// QueueNamedTask builds an envelope for taskName and appends it to the default
// queue (or the one routed via Queue). It returns the resolved task id.
func (c *Client) QueueNamedTask(ctx context.Context, taskName string, args []any, kwargs map[string]any, opts ...Option) (string, error) {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	queue := cfg.queue
	if queue == "" {
		queue = c.queue
	}

	wire, taskID, err := BuildEnvelope(taskName, args, kwargs, append(opts, Queue(queue))...)
	if err != nil {
		return "", err
	}
	n, err := c.rdb.RPush(ctx, queue, wire).Result()
	if err != nil {
		c.log.Errorf("dispatch failed task=%s id=%s queue=%s err=%v", taskName, taskID, queue, err)
		return "", err
	}
	c.log.Infof("dispatched task=%s id=%s queue=%s bytes=%d depth=%d", taskName, taskID, queue, len(wire), n)
	return taskID, nil
}

// QueueScrapeTask dispatches a review-scraping task for a submission.
func (c *Client) QueueScrapeTask(ctx context.Context, submissionID, url string, opts ...Option) (string, error) {
	return c.QueueNamedTask(ctx, "scrape_product_reviews", []any{submissionID, url}, nil, opts...)
}

// QueueAnalysisTask dispatches a review-analysis task for a submission whose
// reviews have already been scraped.
func (c *Client) QueueAnalysisTask(ctx context.Context, submissionID string, opts ...Option) (string, error) {
	return c.QueueNamedTask(ctx, "analyze_reviews", []any{submissionID}, nil, opts...)
}
