package domain

import (
	"strings"
	"time"
)

// Record is implemented by every REST entity held in a collection
type Record interface {
	RecordID() string
	SearchText() string
	StatusLabel() string
}

// Address is shared by sites and clients
type Address struct {
	Street     string   `json:"street,omitempty"`
	City       string   `json:"city,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	Country    string   `json:"country,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

func (a Address) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, strings.TrimSpace(a.PostalCode + " " + a.City), a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Installation is an equipment installation job at a client site
type Installation struct {
	ID            string           `json:"id"`
	Reference     string           `json:"reference,omitempty"`
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Type          string           `json:"type,omitempty"`
	Status        WorkStatus       `json:"status"`
	Client        Ref[Client]      `json:"client"`
	Technician    Ref[User]        `json:"technician"`
	Equipments    []Ref[Equipment] `json:"equipments,omitempty"`
	Address       Address          `json:"address"`
	ScheduledDate *time.Time       `json:"scheduledDate,omitempty"`
	CompletedDate *time.Time       `json:"completedDate,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

func (i Installation) RecordID() string    { return i.ID }
func (i Installation) StatusLabel() string { return string(i.Status) }
func (i Installation) SearchText() string {
	return joinSearch(i.Reference, i.Title, i.Description, i.Type, i.Address.String(), clientName(i.Client))
}

// Equipment is a piece of hardware tracked from supplier to site
type Equipment struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         string            `json:"type,omitempty"`
	Brand        string            `json:"brand,omitempty"`
	Model        string            `json:"model,omitempty"`
	SerialNumber string            `json:"serialNumber,omitempty"`
	Status       WorkStatus        `json:"status"`
	Installation Ref[Installation] `json:"installation"`
	Supplier     Ref[User]         `json:"supplier"`
	WarrantyEnd  *time.Time        `json:"warrantyEnd,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

func (e Equipment) RecordID() string    { return e.ID }
func (e Equipment) StatusLabel() string { return string(e.Status) }
func (e Equipment) SearchText() string {
	return joinSearch(e.Name, e.Type, e.Brand, e.Model, e.SerialNumber)
}

// Priority orders interventions
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Intervention is a maintenance, repair or inspection visit
type Intervention struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Type          string            `json:"type,omitempty"`
	Priority      Priority          `json:"priority,omitempty"`
	Status        WorkStatus        `json:"status"`
	Installation  Ref[Installation] `json:"installation"`
	Technician    Ref[User]         `json:"technician"`
	Client        Ref[Client]       `json:"client"`
	ScheduledDate *time.Time        `json:"scheduledDate,omitempty"`
	StartedAt     *time.Time        `json:"startedAt,omitempty"`
	CompletedAt   *time.Time        `json:"completedAt,omitempty"`
	Report        string            `json:"report,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func (i Intervention) RecordID() string    { return i.ID }
func (i Intervention) StatusLabel() string { return string(i.Status) }
func (i Intervention) SearchText() string {
	return joinSearch(i.Title, i.Description, i.Type, string(i.Priority), clientName(i.Client))
}

// ClientStatus tracks whether a client account is in use
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// Client is a customer of the installer
type Client struct {
	ID          string       `json:"id"`
	CompanyName string       `json:"companyName,omitempty"`
	FirstName   string       `json:"firstName,omitempty"`
	LastName    string       `json:"lastName,omitempty"`
	Email       string       `json:"email,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Type        string       `json:"type,omitempty"`
	Status      ClientStatus `json:"status,omitempty"`
	Address     Address      `json:"address"`
	User        Ref[User]    `json:"user"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Name returns the company name, or the person's name for individuals
func (c Client) Name() string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Client) RecordID() string    { return c.ID }
func (c Client) StatusLabel() string { return string(c.Status) }
func (c Client) SearchText() string {
	return joinSearch(c.Name(), c.Email, c.Phone, c.Address.String())
}

// QuoteRequest is a prospective client's request for a priced offer
type QuoteRequest struct {
	ID               string      `json:"id"`
	Client           Ref[Client] `json:"client"`
	ContactName      string      `json:"contactName,omitempty"`
	ContactEmail     string      `json:"contactEmail,omitempty"`
	ContactPhone     string      `json:"contactPhone,omitempty"`
	InstallationType string      `json:"installationType,omitempty"`
	Description      string      `json:"description,omitempty"`
	Budget           *float64    `json:"budget,omitempty"`
	Status           QuoteStatus `json:"status"`
	Address          Address     `json:"address"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

func (q QuoteRequest) RecordID() string    { return q.ID }
func (q QuoteRequest) StatusLabel() string { return string(q.Status) }
func (q QuoteRequest) SearchText() string {
	return joinSearch(q.ContactName, q.ContactEmail, q.InstallationType, q.Description, clientName(q.Client))
}

func clientName(ref Ref[Client]) string {
	if ref.Expanded == nil {
		return ""
	}
	return ref.Expanded.Name()
}

func joinSearch(parts ...string) string {
	return strings.ToLower(strings.Join(parts, " "))
}
