package domain

import (
	"reflect"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		from     WorkStatus
		to       WorkStatus
		expected bool
	}{
		{name: "technicien starts scheduled work", role: RoleTechnicien, from: StatusScheduled, to: StatusInProgress, expected: true},
		{name: "technicien completes work in progress", role: RoleTechnicien, from: StatusInProgress, to: StatusCompleted, expected: true},
		{name: "technicien cannot cancel", role: RoleTechnicien, from: StatusScheduled, to: StatusCancelled, expected: false},
		{name: "admin cancels scheduled work", role: RoleAdmin, from: StatusScheduled, to: StatusCancelled, expected: true},
		{name: "admin cancels work in progress", role: RoleAdmin, from: StatusInProgress, to: StatusCancelled, expected: true},
		{name: "skipping in_progress is refused", role: RoleAdmin, from: StatusScheduled, to: StatusCompleted, expected: false},
		{name: "completed is terminal", role: RoleAdmin, from: StatusCompleted, to: StatusInProgress, expected: false},
		{name: "cancelled is terminal", role: RoleAdmin, from: StatusCancelled, to: StatusScheduled, expected: false},
		{name: "client never transitions", role: RoleClient, from: StatusScheduled, to: StatusInProgress, expected: false},
		{name: "fournisseur never transitions", role: RoleFournisseur, from: StatusInProgress, to: StatusCompleted, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.role, tt.from, tt.to); got != tt.expected {
				t.Errorf("CanTransition(%s, %s, %s) = %t, want %t", tt.role, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestAvailableTransitions(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		from     WorkStatus
		expected []WorkStatus
	}{
		{name: "admin on scheduled", role: RoleAdmin, from: StatusScheduled, expected: []WorkStatus{StatusInProgress, StatusCancelled}},
		{name: "admin on in_progress", role: RoleAdmin, from: StatusInProgress, expected: []WorkStatus{StatusCompleted, StatusCancelled}},
		{name: "technicien on scheduled", role: RoleTechnicien, from: StatusScheduled, expected: []WorkStatus{StatusInProgress}},
		{name: "client on scheduled", role: RoleClient, from: StatusScheduled, expected: nil},
		{name: "admin on completed", role: RoleAdmin, from: StatusCompleted, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableTransitions(tt.role, tt.from)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWorkStatus_Terminal(t *testing.T) {
	for _, s := range WorkStatuses {
		terminal := s == StatusCompleted || s == StatusCancelled
		if s.Terminal() != terminal {
			t.Errorf("%s: expected terminal %t", s, terminal)
		}
		if terminal && len(AvailableTransitions(RoleAdmin, s)) != 0 {
			t.Errorf("%s: terminal status must not offer transitions", s)
		}
	}
}

func TestQuoteLifecycle_Can(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		from     QuoteStatus
		to       QuoteStatus
		expected bool
	}{
		{name: "admin prices a pending request", role: RoleAdmin, from: QuotePending, to: QuoteQuoted, expected: true},
		{name: "client cannot price", role: RoleClient, from: QuotePending, to: QuoteQuoted, expected: false},
		{name: "client accepts an offer", role: RoleClient, from: QuoteQuoted, to: QuoteAccepted, expected: true},
		{name: "client rejects an offer", role: RoleClient, from: QuoteQuoted, to: QuoteRejected, expected: true},
		{name: "client cannot accept before pricing", role: RoleClient, from: QuotePending, to: QuoteAccepted, expected: false},
		{name: "fournisseur never decides", role: RoleFournisseur, from: QuoteQuoted, to: QuoteAccepted, expected: false},
		{name: "accepted is terminal", role: RoleAdmin, from: QuoteAccepted, to: QuoteRejected, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuoteLifecycle.Can(tt.role, tt.from, tt.to); got != tt.expected {
				t.Errorf("QuoteLifecycle.Can(%s, %s, %s) = %t, want %t", tt.role, tt.from, tt.to, got, tt.expected)
			}
		})
	}
}

func TestLifecycle_StatusRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   StatusRules
		role    Role
		from    string
		to      string
		known   bool
		allowed bool
	}{
		{"work", WorkLifecycle, RoleTechnicien, "scheduled", "in_progress", true, true},
		{"work rejects quote statuses", WorkLifecycle, RoleAdmin, "scheduled", "quoted", false, false},
		{"client deactivation", ClientLifecycle, RoleAdmin, "active", "inactive", true, true},
		{"client reactivation", ClientLifecycle, RoleAdmin, "inactive", "active", true, true},
		{"technicien cannot toggle clients", ClientLifecycle, RoleTechnicien, "active", "inactive", true, false},
		{"quote", QuoteLifecycle, RoleAdmin, "pending", "rejected", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rules.Known(tt.to); got != tt.known {
				t.Errorf("Known(%s) = %t, want %t", tt.to, got, tt.known)
			}
			if got := tt.rules.Allowed(tt.role, tt.from, tt.to); got != tt.allowed {
				t.Errorf("Allowed(%s, %s, %s) = %t, want %t", tt.role, tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestCapabilities_Can(t *testing.T) {
	caps := Capabilities{
		Role: RoleClient,
		Resources: map[Resource][]Action{
			ResourceQuoteRequests: {ActionList, ActionView, ActionCreate},
		},
	}

	if !caps.Can(ResourceQuoteRequests, ActionCreate) {
		t.Error("expected client to create quote requests")
	}
	if caps.Can(ResourceQuoteRequests, ActionDelete) {
		t.Error("client must not delete quote requests")
	}
	if caps.Can(ResourceInstallations, ActionList) {
		t.Error("missing resource must grant nothing")
	}
}
