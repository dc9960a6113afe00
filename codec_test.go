package celerybridge

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeWire splits a wire string back into its outer frame and inner payload.
func decodeWire(t *testing.T, wire string) (map[string]any, map[string]any) {
	t.Helper()
	var outer map[string]any
	require.NoError(t, json.Unmarshal([]byte(wire), &outer))

	body, ok := outer["body"].(string)
	require.True(t, ok, "body must be a string field")
	inner64, err := base64.StdEncoding.DecodeString(body)
	require.NoError(t, err, "body must be valid base64")

	var inner map[string]any
	require.NoError(t, json.Unmarshal(inner64, &inner))
	return outer, inner
}

func TestBuildEnvelope_Roundtrip(t *testing.T) {
	args := []any{"s1", "https://example.com/p"}
	kwargs := map[string]any{"depth": "full"}

	wire, taskID, err := BuildEnvelope("scrape_product_reviews", args, kwargs)
	require.NoError(t, err)
	require.NotEmpty(t, taskID)

	outer, inner := decodeWire(t, wire)

	assert.Equal(t, "scrape_product_reviews", inner["task"])
	assert.Equal(t, taskID, inner["id"])
	assert.Equal(t, taskID, inner["root_id"])
	assert.Equal(t, args, inner["args"])
	assert.Equal(t, kwargs, inner["kwargs"])
	assert.Equal(t, float64(0), inner["retries"])
	assert.Equal(t, true, inner["utc"])
	assert.True(t, strings.HasPrefix(inner["origin"].(string), "go@"))

	// Fields the worker requires present and null.
	for _, k := range []string{"eta", "expires", "callbacks", "errbacks", "chain", "chord", "taskset", "group", "parent_id"} {
		v, present := inner[k]
		assert.True(t, present, "inner payload missing %q", k)
		assert.Nil(t, v, "%q must be null", k)
	}
	assert.Equal(t, []any{nil, nil}, inner["timelimit"])

	assert.Equal(t, "utf-8", outer["content-encoding"])
	assert.Equal(t, "application/json", outer["content-type"])
	assert.Equal(t, map[string]any{}, outer["headers"])

	props := outer["properties"].(map[string]any)
	assert.Equal(t, taskID, props["correlation_id"])
	assert.Equal(t, taskID, props["reply_to"])
	assert.Equal(t, float64(2), props["delivery_mode"])
	assert.Equal(t, float64(0), props["priority"])
	assert.Equal(t, "base64", props["body_encoding"])
	assert.NotEmpty(t, props["delivery_tag"])

	di := props["delivery_info"].(map[string]any)
	assert.Equal(t, "", di["exchange"])
	assert.Equal(t, "celery", di["routing_key"])
}

func TestBuildEnvelope_ExplicitTaskID(t *testing.T) {
	id := "11111111-2222-3333-4444-555555555555"

	wire1, got1, err := BuildEnvelope("t", nil, nil, TaskID(id))
	require.NoError(t, err)
	wire2, got2, err := BuildEnvelope("t", nil, nil, TaskID(id))
	require.NoError(t, err)
	assert.Equal(t, id, got1)
	assert.Equal(t, id, got2)

	outer1, inner1 := decodeWire(t, wire1)
	outer2, inner2 := decodeWire(t, wire2)
	assert.Equal(t, id, inner1["id"])
	assert.Equal(t, id, inner2["id"])

	p1 := outer1["properties"].(map[string]any)
	p2 := outer2["properties"].(map[string]any)
	assert.Equal(t, id, p1["correlation_id"])
	assert.Equal(t, id, p2["correlation_id"])
	assert.Equal(t, id, p1["reply_to"])
	// Delivery tags are unique per call, even for retries of the same task id.
	assert.NotEqual(t, p1["delivery_tag"], p2["delivery_tag"])
}

func TestBuildEnvelope_NilArgsAndKwargs(t *testing.T) {
	wire, _, err := BuildEnvelope("t", nil, nil)
	require.NoError(t, err)
	_, inner := decodeWire(t, wire)

	// The worker rejects null here; empty collections are mandatory.
	assert.Equal(t, []any{}, inner["args"])
	assert.Equal(t, map[string]any{}, inner["kwargs"])
}

func TestBuildEnvelope_QueueRouting(t *testing.T) {
	wire, _, err := BuildEnvelope("t", nil, nil, Queue("priority"))
	require.NoError(t, err)
	outer, _ := decodeWire(t, wire)
	di := outer["properties"].(map[string]any)["delivery_info"].(map[string]any)
	assert.Equal(t, "priority", di["routing_key"])
}

func TestBuildEnvelope_OriginOverride(t *testing.T) {
	wire, _, err := BuildEnvelope("t", nil, nil, Origin("bridge@test-host"))
	require.NoError(t, err)
	_, inner := decodeWire(t, wire)
	assert.Equal(t, "bridge@test-host", inner["origin"])
}

func TestBuildEnvelope_EmptyTaskName(t *testing.T) {
	_, _, err := BuildEnvelope("", nil, nil)
	require.ErrorIs(t, err, ErrEmptyTaskName)
}
