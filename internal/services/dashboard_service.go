package services

import (
	"context"
	"fmt"
	"log"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

// Collections groups the per-resource lists the console keeps
type Collections struct {
	Installations *Collection[domain.Installation]
	Equipments    *Collection[domain.Equipment]
	Interventions *Collection[domain.Intervention]
	Clients       *Collection[domain.Client]
	QuoteRequests *Collection[domain.QuoteRequest]
}

// NewCollections creates one empty collection per resource
func NewCollections(client *api.Client) *Collections {
	return &Collections{
		Installations: NewInstallations(client),
		Equipments:    NewEquipments(client),
		Interventions: NewInterventions(client),
		Clients:       NewClients(client),
		QuoteRequests: NewQuoteRequests(client),
	}
}

// Dashboard is the home page summary. Sections the role may not list are nil.
type Dashboard struct {
	Role          domain.Role    `json:"role"`
	Installations map[string]int `json:"installations,omitempty"`
	Interventions map[string]int `json:"interventions,omitempty"`
	Equipments    map[string]int `json:"equipments,omitempty"`
	PendingQuotes *int           `json:"pendingQuotes,omitempty"`
	Clients       *int           `json:"clients,omitempty"`
	Unread        int            `json:"unreadNotifications"`
	Errors        []string       `json:"errors,omitempty"`
}

// DashboardService builds the summary from the collections the role may list
type DashboardService struct {
	policies      domain.PolicyService
	collections   *Collections
	notifications *NotificationService
}

func NewDashboardService(policies domain.PolicyService, collections *Collections, notifications *NotificationService) *DashboardService {
	return &DashboardService{policies: policies, collections: collections, notifications: notifications}
}

type fetcher interface {
	Fetch(ctx context.Context) error
	Resource() domain.Resource
}

// Summary counts records per status. With refresh set, every listable
// collection is fetched first; a failed fetch counts the stale list.
func (d *DashboardService) Summary(ctx context.Context, role domain.Role, refresh bool) (*Dashboard, error) {
	caps, err := d.policies.Capabilities(role)
	if err != nil {
		return nil, fmt.Errorf("load capabilities: %w", err)
	}

	out := &Dashboard{Role: role}
	c := d.collections

	sections := []struct {
		col   fetcher
		apply func()
	}{
		{c.Installations, func() { out.Installations = countByStatus(c.Installations.Items()) }},
		{c.Interventions, func() { out.Interventions = countByStatus(c.Interventions.Items()) }},
		{c.Equipments, func() { out.Equipments = countByStatus(c.Equipments.Items()) }},
		{c.QuoteRequests, func() {
			n := countByStatus(c.QuoteRequests.Items())[string(domain.QuotePending)]
			out.PendingQuotes = &n
		}},
		{c.Clients, func() {
			n := len(c.Clients.Items())
			out.Clients = &n
		}},
	}

	for _, s := range sections {
		if !caps.Can(s.col.Resource(), domain.ActionList) {
			continue
		}
		if refresh {
			if err := s.col.Fetch(ctx); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Printf("dashboard: fetch %s: %v", s.col.Resource(), err)
				out.Errors = append(out.Errors, fmt.Sprintf("%s: %s", s.col.Resource(), ErrorMessage(err)))
			}
		}
		s.apply()
	}

	if d.notifications != nil {
		out.Unread = d.notifications.State().Unread
	}
	return out, nil
}

func countByStatus[T domain.Record](items []T) map[string]int {
	counts := make(map[string]int)
	for _, it := range items {
		counts[it.StatusLabel()]++
	}
	return counts
}
