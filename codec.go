package celerybridge

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"sync"

	"github.com/google/uuid"
	ikeys "github.com/celerybridge/celerybridge-go/internal/keys"
)

// messageBody is the inner Celery task payload. Field set and null-ness are a
// frozen wire contract with the Python worker; do not add, drop, or omitempty
// anything here without coordinating a protocol bump with the consumer side.
type messageBody struct {
	Task      string         `json:"task"`
	ID        string         `json:"id"`
	Args      []any          `json:"args"`
	Kwargs    map[string]any `json:"kwargs"`
	Retries   int            `json:"retries"`
	ETA       *string        `json:"eta"`
	Expires   *string        `json:"expires"`
	UTC       bool           `json:"utc"`
	Callbacks any            `json:"callbacks"`
	Errbacks  any            `json:"errbacks"`
	Chain     any            `json:"chain"`
	Chord     any            `json:"chord"`
	Timelimit [2]*float64    `json:"timelimit"` // [soft, hard]
	Taskset   any            `json:"taskset"`
	Group     any            `json:"group"`
	ParentID  *string        `json:"parent_id"`
	RootID    string         `json:"root_id"`
	Origin    string         `json:"origin"`
}

type deliveryInfo struct {
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
}

type messageProperties struct {
	CorrelationID string       `json:"correlation_id"`
	ReplyTo       string       `json:"reply_to"`
	DeliveryMode  int          `json:"delivery_mode"`
	DeliveryInfo  deliveryInfo `json:"delivery_info"`
	Priority      int          `json:"priority"`
	BodyEncoding  string       `json:"body_encoding"`
	DeliveryTag   string       `json:"delivery_tag"`
}

// messageEnvelope is the outer Kombu frame. The inner payload travels base64
// encoded in Body, serialized in a separate pass from the frame itself.
type messageEnvelope struct {
	Body            string            `json:"body"`
	ContentEncoding string            `json:"content-encoding"`
	ContentType     string            `json:"content-type"`
	Headers         map[string]any    `json:"headers"`
	Properties      messageProperties `json:"properties"`
}

var (
	originOnce    sync.Once
	defaultOrigin string
)

// hostOrigin returns the provenance string stamped into envelopes, computed
// once per process.
func hostOrigin() string {
	originOnce.Do(func() {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "unknown"
		}
		defaultOrigin = "go@" + host
	})
	return defaultOrigin
}

// BuildEnvelope builds a Celery-compatible wire message for taskName with the
// given positional args and keyword kwargs. It returns the serialized envelope
// and the resolved task id. Supply TaskID to reuse an id across retries of the
// same logical task; every call gets a fresh delivery tag regardless.
//
// The output must parse on the worker side exactly as kombu's redis transport
// expects: an outer frame whose body field is the base64 of the inner task
// payload JSON, with correlation_id and reply_to both equal to the task id.
func BuildEnvelope(taskName string, args []any, kwargs map[string]any, opts ...Option) (string, string, error) {
	if taskName == "" {
		return "", "", ErrEmptyTaskName
	}

	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}

	taskID := cfg.id
	if taskID == "" {
		taskID = uuid.NewString()
	}
	queue := cfg.queue
	if queue == "" {
		queue = ikeys.DefaultQueue
	}
	origin := cfg.origin
	if origin == "" {
		origin = hostOrigin()
	}

	// nil slices/maps marshal to JSON null; the worker wants [] and {}.
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}

	body := messageBody{
		Task:    taskName,
		ID:      taskID,
		Args:    args,
		Kwargs:  kwargs,
		Retries: 0,
		UTC:     true,
		RootID:  taskID,
		Origin:  origin,
	}
	inner, err := json.Marshal(body)
	if err != nil {
		return "", "", err
	}

	envelope := messageEnvelope{
		Body:            base64.StdEncoding.EncodeToString(inner),
		ContentEncoding: "utf-8",
		ContentType:     "application/json",
		Headers:         map[string]any{},
		Properties: messageProperties{
			CorrelationID: taskID,
			ReplyTo:       taskID,
			DeliveryMode:  2, // persistent
			DeliveryInfo:  deliveryInfo{Exchange: "", RoutingKey: queue},
			Priority:      0,
			BodyEncoding:  "base64",
			DeliveryTag:   uuid.NewString(),
		},
	}
	wire, err := json.Marshal(envelope)
	if err != nil {
		return "", "", err
	}
	return string(wire), taskID, nil
}
