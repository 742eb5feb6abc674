package auth

// GateState is the outcome of one access-gate evaluation.
type GateState int

const (
	// GatePending means the auth context has not finished initializing.
	GatePending GateState = iota
	// GateDenied means nobody is signed in or the role is below the minimum.
	GateDenied
	// GateAdmitted means the current role satisfies the minimum.
	GateAdmitted
)

func (s GateState) String() string {
	switch s {
	case GatePending:
		return "pending"
	case GateDenied:
		return "denied"
	case GateAdmitted:
		return "admitted"
	default:
		return "unknown"
	}
}

// DenyReason explains a GateDenied decision.
type DenyReason string

const (
	DenyUnauthenticated  DenyReason = "unauthenticated"
	DenyInsufficientRole DenyReason = "insufficient_role"
)

// Decision is what a gate yields for a protected surface.
// Identity is set only when State is GateAdmitted.
type Decision struct {
	State    GateState
	Identity *Identity
	Reason   DenyReason
}

// Admitted is shorthand for State == GateAdmitted.
func (d Decision) Admitted() bool { return d.State == GateAdmitted }

// Gate admits callers whose role is MinimumRole or above.
// The zero value admits any authenticated identity.
type Gate struct {
	MinimumRole Role
}

// NewGate returns a gate for the given minimum role.
func NewGate(minimum Role) Gate { return Gate{MinimumRole: minimum} }

// Minimum returns the effective minimum role.
func (g Gate) Minimum() Role {
	if g.MinimumRole == "" {
		return RoleUser
	}
	return g.MinimumRole
}

// Evaluate decides admission for a snapshot of session state. It is pure, so
// repeated evaluation of the same state always yields the same decision.
func (g Gate) Evaluate(s SessionState) Decision {
	if !s.Initialized {
		return Decision{State: GatePending}
	}
	if s.Identity == nil {
		return Decision{State: GateDenied, Reason: DenyUnauthenticated}
	}
	if !s.Identity.Role.AtLeast(g.Minimum()) {
		return Decision{State: GateDenied, Reason: DenyInsufficientRole}
	}
	id := *s.Identity
	return Decision{State: GateAdmitted, Identity: &id}
}
