package domain

// WorkStatus is the lifecycle shared by installations, interventions and equipment
type WorkStatus string

const (
	StatusScheduled  WorkStatus = "scheduled"
	StatusInProgress WorkStatus = "in_progress"
	StatusCompleted  WorkStatus = "completed"
	StatusCancelled  WorkStatus = "cancelled"
)

// WorkStatuses lists the work statuses in lifecycle order
var WorkStatuses = []WorkStatus{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known work status
func (s WorkStatus) Valid() bool {
	return WorkLifecycle.Known(string(s))
}

// Terminal reports whether no transition leaves s
func (s WorkStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// QuoteStatus is the lifecycle of a quote request
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteQuoted   QuoteStatus = "quoted"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

// Transition is one allowed status move and the roles that may perform it
type Transition[S ~string] struct {
	From  S
	To    S
	Roles []Role
}

// Lifecycle is the status table of one kind of record
type Lifecycle[S ~string] struct {
	Statuses []S
	Moves    []Transition[S]
}

// StatusRules is the untyped view of a Lifecycle used by collections
type StatusRules interface {
	Known(status string) bool
	Allowed(role Role, from, to string) bool
}

// WorkLifecycle: scheduled -> in_progress -> completed, cancelled from
// scheduled or in_progress by admin only. completed and cancelled are terminal.
var WorkLifecycle = Lifecycle[WorkStatus]{
	Statuses: WorkStatuses,
	Moves: []Transition[WorkStatus]{
		{From: StatusScheduled, To: StatusInProgress, Roles: []Role{RoleAdmin, RoleTechnicien}},
		{From: StatusInProgress, To: StatusCompleted, Roles: []Role{RoleAdmin, RoleTechnicien}},
		{From: StatusScheduled, To: StatusCancelled, Roles: []Role{RoleAdmin}},
		{From: StatusInProgress, To: StatusCancelled, Roles: []Role{RoleAdmin}},
	},
}

// QuoteLifecycle: the installer prices a pending request, the client accepts
// or rejects the offer. accepted and rejected are terminal.
var QuoteLifecycle = Lifecycle[QuoteStatus]{
	Statuses: []QuoteStatus{QuotePending, QuoteQuoted, QuoteAccepted, QuoteRejected},
	Moves: []Transition[QuoteStatus]{
		{From: QuotePending, To: QuoteQuoted, Roles: []Role{RoleAdmin}},
		{From: QuotePending, To: QuoteRejected, Roles: []Role{RoleAdmin}},
		{From: QuoteQuoted, To: QuoteAccepted, Roles: []Role{RoleAdmin, RoleClient}},
		{From: QuoteQuoted, To: QuoteRejected, Roles: []Role{RoleAdmin, RoleClient}},
	},
}

// ClientLifecycle toggles a client account; only admins do it
var ClientLifecycle = Lifecycle[ClientStatus]{
	Statuses: []ClientStatus{ClientActive, ClientInactive},
	Moves: []Transition[ClientStatus]{
		{From: ClientActive, To: ClientInactive, Roles: []Role{RoleAdmin}},
		{From: ClientInactive, To: ClientActive, Roles: []Role{RoleAdmin}},
	},
}

// Can reports whether role may move a record from one status to another
func (l Lifecycle[S]) Can(role Role, from, to S) bool {
	for _, t := range l.Moves {
		if t.From != from || t.To != to {
			continue
		}
		for _, r := range t.Roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// Available returns the target statuses role may pick from the current one
func (l Lifecycle[S]) Available(role Role, from S) []S {
	var out []S
	for _, t := range l.Moves {
		if t.From == from && l.Can(role, t.From, t.To) {
			out = append(out, t.To)
		}
	}
	return out
}

func (l Lifecycle[S]) Known(status string) bool {
	for _, s := range l.Statuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

func (l Lifecycle[S]) Allowed(role Role, from, to string) bool {
	return l.Can(role, S(from), S(to))
}

// CanTransition reports whether role may move a work item from one status to another
func CanTransition(role Role, from, to WorkStatus) bool {
	return WorkLifecycle.Can(role, from, to)
}

// AvailableTransitions returns the work statuses role may pick from the current one
func AvailableTransitions(role Role, from WorkStatus) []WorkStatus {
	return WorkLifecycle.Available(role, from)
}
