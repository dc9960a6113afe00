package celerybridge

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	ikeys "github.com/celerybridge/celerybridge-go/internal/keys"
)

// SubmissionMappingTTL bounds how long a submission→task mapping lives. One
// canonical TTL applies to every writer of the mapping, HTTP path and daemon
// alike; after expiry a still-pending submission becomes eligible for
// re-dispatch, which is an accepted duplicate-work risk rather than corruption.
const SubmissionMappingTTL = 24 * time.Hour

// StoreTaskID records taskID as the in-flight task for a submission,
// overwriting any previous mapping. Readers use it only to suppress duplicate
// dispatch; result lookups always go task-id first.
func (c *Client) StoreTaskID(ctx context.Context, submissionID, taskID string) error {
	err := c.rdb.Set(ctx, ikeys.Submission(submissionID), taskID, SubmissionMappingTTL).Err()
	if err != nil {
		c.log.Errorf("store task mapping failed submission=%s task=%s err=%v", submissionID, taskID, err)
		return err
	}
	c.log.Debugf("stored task mapping submission=%s task=%s", submissionID, taskID)
	return nil
}

// TaskIDForSubmission returns the task id recorded for a submission, or ""
// when no mapping exists (never recorded, or expired).
func (c *Client) TaskIDForSubmission(ctx context.Context, submissionID string) (string, error) {
	taskID, err := c.rdb.Get(ctx, ikeys.Submission(submissionID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return taskID, nil
}
