package celerybridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ikeys "github.com/celerybridge/celerybridge-go/internal/keys"
)

func TestGetResult_Absent(t *testing.T) {
	_, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	res, err := c.GetResult(context.Background(), "never-dispatched")
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestGetResult_Success(t *testing.T) {
	s, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	require.NoError(t, s.Set(ikeys.Result("t1"),
		`{"status":"SUCCESS","result":{"reviews":12},"task_id":"t1","traceback":null}`))

	res, err := c.GetResult(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StateSuccess, res.Status)
	assert.Equal(t, "t1", res.TaskID)
	assert.JSONEq(t, `{"reviews":12}`, string(res.Result))
}

func TestGetResult_Malformed(t *testing.T) {
	s, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	require.NoError(t, s.Set(ikeys.Result("t2"), "not-json{{"))

	res, err := c.GetResult(context.Background(), "t2")
	require.NoError(t, err, "malformed records must not surface as errors")
	require.NotNil(t, res)
	assert.Equal(t, StateError, res.Status)
	assert.Equal(t, "t2", res.TaskID)
}

func TestWaitForCompletion_ReturnsOnTerminal(t *testing.T) {
	s, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)
	ctx := context.Background()

	go func() {
		time.Sleep(60 * time.Millisecond)
		_ = s.Set(ikeys.Result("t3"), `{"status":"SUCCESS","result":null,"task_id":"t3"}`)
	}()

	start := time.Now()
	res, err := c.WaitForCompletion(ctx, "t3",
		WaitTimeout(5*time.Second), WaitInterval(20*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, res.Status)
	assert.Less(t, time.Since(start), 2*time.Second, "should return within one poll of the record appearing")
}

func TestWaitForCompletion_IgnoresNonTerminal(t *testing.T) {
	s, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	// STARTED is not modeled; only presence of a terminal status matters.
	require.NoError(t, s.Set(ikeys.Result("t4"), `{"status":"STARTED","task_id":"t4"}`))

	_, err := c.WaitForCompletion(context.Background(), "t4",
		WaitTimeout(80*time.Millisecond), WaitInterval(20*time.Millisecond))
	require.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitForCompletion_Timeout(t *testing.T) {
	_, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	_, err := c.WaitForCompletion(context.Background(), "t5",
		WaitTimeout(50*time.Millisecond), WaitInterval(10*time.Millisecond))
	require.ErrorIs(t, err, ErrWaitTimeout)
}

func TestWaitForCompletion_ContextCancelled(t *testing.T) {
	_, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err := c.WaitForCompletion(ctx, "t6",
		WaitTimeout(5*time.Second), WaitInterval(10*time.Millisecond))
	require.ErrorIs(t, err, context.Canceled)
}

// Covers the full producer-side path: dispatch, worker stand-in writes the
// result record, poller reads it back.
func TestEndToEnd_DispatchThenResult(t *testing.T) {
	s, rdb, done := newMiniClient(t)
	defer done()
	c := NewClient(rdb)
	ctx := context.Background()

	n, _ := rdb.LLen(ctx, "celery").Result()
	require.Equal(t, int64(0), n)

	taskID, err := c.QueueScrapeTask(ctx, "S1", "https://example.com/p")
	require.NoError(t, err)

	n, _ = rdb.LLen(ctx, "celery").Result()
	require.Equal(t, int64(1), n)

	require.NoError(t, s.Set(ikeys.Result(taskID),
		`{"status":"SUCCESS","result":{"review_count":3},"task_id":"`+taskID+`"}`))

	res, err := c.GetResult(ctx, taskID)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, StateSuccess, res.Status)
}
