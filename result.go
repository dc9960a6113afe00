package celerybridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	ikeys "github.com/celerybridge/celerybridge-go/internal/keys"
)

// Result is a record the Celery result backend wrote for a finished task.
// This system never writes or mutates these records; the worker owns them.
type Result struct {
	Status    State           `json:"status"`
	Result    json.RawMessage `json:"result"`
	Traceback *string         `json:"traceback"`
	TaskID    string          `json:"task_id"`
	DateDone  *string         `json:"date_done"`
}

const (
	defaultWaitTimeout  = 10 * time.Minute
	defaultWaitInterval = 2 * time.Second
)

// GetResult looks up the result record for taskID. It returns (nil, nil) when
// no record exists yet: a still-running task and an unknown id are
// indistinguishable, matching the result backend's own semantics. A record
// that exists but cannot be decoded is returned as a synthetic StateError
// result instead of an error, so polling loops survive worker-side bugs.
func (c *Client) GetResult(ctx context.Context, taskID string) (*Result, error) {
	raw, err := c.rdb.Get(ctx, ikeys.Result(taskID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res Result
	if err := c.encoder.Decode([]byte(raw), &res); err != nil {
		c.log.Warnf("malformed result record id=%s err=%v", taskID, err)
		msg, _ := json.Marshal("failed to decode result record: " + err.Error())
		return &Result{Status: StateError, Result: msg, TaskID: taskID}, nil
	}
	return &res, nil
}

// WaitForCompletion polls GetResult at a fixed interval until a terminal
// record appears, then returns it. It fails with ErrWaitTimeout once the
// timeout elapses; a timeout does not mean the task failed, only that it has
// not finished yet. Poll errors (broker hiccups, malformed records already
// absorbed by GetResult) do not abort the wait.
func (c *Client) WaitForCompletion(ctx context.Context, taskID string, opts ...Option) (*Result, error) {
	cfg := &options{
		waitTimeout:  c.waitTimeout,
		waitInterval: c.waitInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	deadline := time.NewTimer(cfg.waitTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(cfg.waitInterval)
	defer tick.Stop()

	for {
		res, err := c.GetResult(ctx, taskID)
		if err != nil {
			c.log.Warnf("result poll failed id=%s err=%v", taskID, err)
		} else if res != nil && res.Status.Ready() {
			c.log.Infof("task completed id=%s status=%s", taskID, res.Status)
			return res, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			c.log.Errorf("timed out waiting for task id=%s after %s", taskID, cfg.waitTimeout)
			return nil, ErrWaitTimeout
		case <-tick.C:
		}
	}
}
