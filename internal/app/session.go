package app

import "finops-agent/internal/core"

// ActionKind names a prepared side-effecting operation awaiting approval.
type ActionKind string

const (
	ActionNone      ActionKind = "NONE"
	ActionSendEmail ActionKind = "SEND_EMAIL"
)

// PendingEmail is one invoice/draft pair queued behind the approval gate.
type PendingEmail struct {
	Invoice core.Invoice
	Draft   core.EmailDraft
}

// PendingAction is the armed-but-unconfirmed operation for this session.
// Invariant: Payload is non-empty iff Kind != ActionNone. At most one
// pending action exists; arming a new one replaces any prior unconfirmed
// action — there is no queue.
type PendingAction struct {
	Kind    ActionKind
	Payload []PendingEmail
}

// Session is the per-conversation memory: the last fetched invoice batch,
// the last risk analysis, and the pending action. It lives for the process
// lifetime, is never persisted, and has a single writer (the controller).
type Session struct {
	LastInvoices     []core.Invoice
	LastRiskAnalysis []core.RiskAssessment

	pending PendingAction
}

func NewSession() *Session {
	return &Session{pending: PendingAction{Kind: ActionNone}}
}

// Arm replaces the pending action with an email send over payload.
// An empty payload clears instead, preserving the non-empty invariant.
func (s *Session) Arm(payload []PendingEmail) {
	if len(payload) == 0 {
		s.ClearPending()
		return
	}
	s.pending = PendingAction{Kind: ActionSendEmail, Payload: payload}
}

// ClearPending resets the pending action to NONE with an empty payload.
func (s *Session) ClearPending() {
	s.pending = PendingAction{Kind: ActionNone}
}

// Pending returns the current pending action.
func (s *Session) Pending() PendingAction {
	return s.pending
}

// HasPending reports whether an action of the given kind is armed.
func (s *Session) HasPending(kind ActionKind) bool {
	return s.pending.Kind == kind
}
