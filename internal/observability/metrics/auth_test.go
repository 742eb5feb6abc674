package metrics

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	kind  string
	name  string
	tags  map[string]string
	value any
}

type recordingSink struct {
	mu      sync.Mutex
	samples []sample
}

func (r *recordingSink) Count(name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample{kind: "count", name: name, tags: tags, value: value})
}

func (r *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, sample{kind: "timing", name: name, tags: tags, value: value})
}

func TestEmitLogin(t *testing.T) {
	sink := &recordingSink{}
	EmitLogin(sink, LoginMetric{Result: ResultSuccess, Role: "admin", Duration: 12 * time.Millisecond})

	require.Len(t, sink.samples, 2)
	assert.Equal(t, "auth.login", sink.samples[0].name)
	assert.Equal(t, map[string]string{"result": "success", "role": "admin"}, sink.samples[0].tags)
	assert.Equal(t, "auth.login.duration", sink.samples[1].name)
}

func TestEmitLogin_ErrorClass(t *testing.T) {
	sink := &recordingSink{}
	EmitLogin(sink, LoginMetric{Result: ResultError, Err: fmt.Errorf("save: %w", context.DeadlineExceeded)})

	require.Len(t, sink.samples, 1)
	assert.Equal(t, "timeout", sink.samples[0].tags["error_class"])
}

func TestEmitGateDecision(t *testing.T) {
	sink := &recordingSink{}
	EmitGateDecision(sink, GateMetric{Surface: "admin", Minimum: "admin", State: "denied", Reason: "insufficient_role"})
	EmitLogout(sink)

	require.Len(t, sink.samples, 2)
	assert.Equal(t, "auth.gate", sink.samples[0].name)
	assert.Equal(t, "insufficient_role", sink.samples[0].tags["reason"])
	assert.Equal(t, "auth.logout", sink.samples[1].name)
}

func TestEmit_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitLogin(nil, LoginMetric{})
		EmitLogout(nil)
		EmitGateDecision(nil, GateMetric{})
	})
}
