package celerybridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Apply(t *testing.T) {
	cfg := &options{}
	for _, opt := range []Option{
		TaskID("id-1"),
		Queue("priority"),
		Origin("bridge@host"),
		WaitTimeout(time.Minute),
		WaitInterval(time.Second),
	} {
		opt(cfg)
	}

	assert.Equal(t, "id-1", cfg.id)
	assert.Equal(t, "priority", cfg.queue)
	assert.Equal(t, "bridge@host", cfg.origin)
	assert.Equal(t, time.Minute, cfg.waitTimeout)
	assert.Equal(t, time.Second, cfg.waitInterval)
}

func TestOptions_NonPositiveDurationsIgnored(t *testing.T) {
	cfg := &options{waitTimeout: time.Minute, waitInterval: time.Second}
	WaitTimeout(0)(cfg)
	WaitInterval(-time.Second)(cfg)

	assert.Equal(t, time.Minute, cfg.waitTimeout)
	assert.Equal(t, time.Second, cfg.waitInterval)
}
