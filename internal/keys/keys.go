package keys

// Package keys centralizes broker key construction.
// It is kept in internal to avoid leaking key formats to public API.

// DefaultQueue is the list Celery workers consume from unless routed elsewhere.
const DefaultQueue = "celery"

// resultPrefix is the prefix the Celery redis result backend writes under.
const resultPrefix = "celery-task-meta-"

// Result returns the result-backend key for a task id.
func Result(taskID string) string { return resultPrefix + taskID }

// Submission returns the key mapping a submission id to its in-flight task id.
func Submission(submissionID string) string {
	return "submission:" + submissionID + ":task_id"
}
