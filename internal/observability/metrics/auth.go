package metrics

import (
	"time"

	obserrors "github.com/target/programme-portal/internal/observability/errors"
	"github.com/target/programme-portal/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// LoginMetric describes one login attempt.
type LoginMetric struct {
	Result   string
	Role     string
	Duration time.Duration
	Err      error
}

// EmitLogin emits auth.login and auth.login.duration.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	if in.Role != "" {
		tags["role"] = in.Role
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	sink.Count("auth.login", 1, tags)
	if in.Duration > 0 {
		sink.Timing("auth.login.duration", in.Duration, CloneTags(tags))
	}
}

// EmitLogout counts logouts.
func EmitLogout(sink statsd.Sink) {
	if sink == nil {
		return
	}
	sink.Count("auth.logout", 1, nil)
}

// GateMetric describes one access gate evaluation.
type GateMetric struct {
	Surface string
	Minimum string
	State   string
	Reason  string
}

// EmitGateDecision counts gate outcomes per surface.
func EmitGateDecision(sink statsd.Sink, in GateMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"surface": in.Surface,
		"minimum": in.Minimum,
		"state":   in.State,
	}
	if in.Reason != "" {
		tags["reason"] = in.Reason
	}
	sink.Count("auth.gate", 1, tags)
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
