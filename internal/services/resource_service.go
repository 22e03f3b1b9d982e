package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

// Patch is a partial update sent as the PUT body
type Patch map[string]any

// CollectionState is what a list view renders
type CollectionState[T domain.Record] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Collection keeps the client-side list of one REST resource.
// Failed requests never drop the list; they only set Error.
// Results that arrive after their context was cancelled are discarded.
type Collection[T domain.Record] struct {
	resource domain.Resource
	client   *api.Client
	rules    domain.StatusRules

	mu       sync.Mutex
	items    []T
	inflight int
	err      string

	// local writes applied while a Fetch is in flight, by sequence number,
	// so a response served before them cannot undo them
	fetching int
	seq      uint64
	touched  map[string]uint64
	removed  map[string]uint64
}

// NewCollection creates an empty collection backed by resource's REST path.
// rules gates Transition; nil means the records have no status workflow.
func NewCollection[T domain.Record](client *api.Client, resource domain.Resource, rules domain.StatusRules) *Collection[T] {
	return &Collection[T]{resource: resource, client: client, rules: rules}
}

func NewInstallations(client *api.Client) *Collection[domain.Installation] {
	return NewCollection[domain.Installation](client, domain.ResourceInstallations, domain.WorkLifecycle)
}

func NewEquipments(client *api.Client) *Collection[domain.Equipment] {
	return NewCollection[domain.Equipment](client, domain.ResourceEquipments, domain.WorkLifecycle)
}

func NewInterventions(client *api.Client) *Collection[domain.Intervention] {
	return NewCollection[domain.Intervention](client, domain.ResourceInterventions, domain.WorkLifecycle)
}

func NewClients(client *api.Client) *Collection[domain.Client] {
	return NewCollection[domain.Client](client, domain.ResourceClients, domain.ClientLifecycle)
}

func NewQuoteRequests(client *api.Client) *Collection[domain.QuoteRequest] {
	return NewCollection[domain.QuoteRequest](client, domain.ResourceQuoteRequests, domain.QuoteLifecycle)
}

// Resource names the collection
func (c *Collection[T]) Resource() domain.Resource { return c.resource }

// KnownStatus reports whether status belongs to the collection's lifecycle
func (c *Collection[T]) KnownStatus(status string) bool {
	return c.rules != nil && c.rules.Known(status)
}

func (c *Collection[T]) path(id string) string {
	if id == "" {
		return c.resource.Path()
	}
	return c.resource.Path() + "/" + url.PathEscape(id)
}

func (c *Collection[T]) begin() {
	c.mu.Lock()
	c.inflight++
	c.err = ""
	c.mu.Unlock()
}

// finish ends one request. apply runs under the lock unless ctx was
// cancelled, in which case the outcome is dropped.
func (c *Collection[T]) finish(ctx context.Context, err error, apply func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--

	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		c.err = ErrorMessage(err)
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}

// Fetch replaces the list with the backend's. On failure the previous list stays.
// Creates, updates and removes applied while the request was out are kept on
// top of the answer.
func (c *Collection[T]) Fetch(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	c.fetching++
	c.err = ""
	start := c.seq
	c.mu.Unlock()

	var items []T
	err := c.client.Get(ctx, c.path(""), &items)
	c.finish(ctx, err, func() {
		c.items = c.mergeLocked(items, start)
	})

	c.mu.Lock()
	c.fetching--
	if c.fetching == 0 {
		c.touched, c.removed = nil, nil
	}
	c.mu.Unlock()

	if err == nil {
		err = ctx.Err()
	}
	return err
}

// Get loads one record without touching the list
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	var rec T
	err := c.client.Get(ctx, c.path(id), &rec)

	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return &rec, nil
}

// Create posts a new record and upserts the answer into the list by id
func (c *Collection[T]) Create(ctx context.Context, record T) (*T, error) {
	c.begin()

	var created T
	err := c.client.Post(ctx, c.path(""), record, &created)
	if !c.finish(ctx, err, func() {
		c.upsertLocked(created)
		c.noteLocked(created.RecordID(), false)
	}) {
		return nil, firstErr(err, ctx.Err())
	}
	return &created, nil
}

// Update sends a partial update and replaces the listed entry with the answer
func (c *Collection[T]) Update(ctx context.Context, id string, patch Patch) (*T, error) {
	c.begin()

	var updated T
	err := c.client.Put(ctx, c.path(id), patch, &updated)
	if !c.finish(ctx, err, func() {
		// some backends answer with an empty body
		if updated.RecordID() == "" {
			return
		}
		for i := range c.items {
			if c.items[i].RecordID() == id {
				c.items[i] = updated
			}
		}
		c.noteLocked(id, false)
	}) {
		return nil, firstErr(err, ctx.Err())
	}
	if updated.RecordID() == "" {
		if rec := c.Lookup(id); rec != nil {
			return rec, nil
		}
	}
	return &updated, nil
}

// Remove deletes a record and filters it out of the list.
// A failed delete returns false and keeps the list as it was.
func (c *Collection[T]) Remove(ctx context.Context, id string) (bool, error) {
	c.begin()

	err := c.client.Delete(ctx, c.path(id))
	if !c.finish(ctx, err, func() {
		kept := c.items[:0:0]
		for _, it := range c.items {
			if it.RecordID() != id {
				kept = append(kept, it)
			}
		}
		c.items = kept
		c.noteLocked(id, true)
	}) {
		return false, firstErr(err, ctx.Err())
	}
	return true, nil
}

// Transition moves a record to another status when its lifecycle lets role
// do it. Illegal moves fail with domain.ErrIllegalTransition and send
// nothing to the backend.
func (c *Collection[T]) Transition(ctx context.Context, role domain.Role, id string, to string) (*T, error) {
	if c.rules == nil || !c.rules.Known(to) {
		return nil, domain.ErrIllegalTransition
	}
	current := c.Lookup(id)
	if current == nil {
		rec, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		current = rec
	}

	if !c.rules.Allowed(role, (*current).StatusLabel(), to) {
		return nil, domain.ErrIllegalTransition
	}
	return c.Update(ctx, id, Patch{"status": to})
}

// Lookup returns a copy of the listed record with id, or nil
func (c *Collection[T]) Lookup(id string) *T {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.RecordID() == id {
			rec := it
			return &rec
		}
	}
	return nil
}

// Items returns a copy of the list
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T{}, c.items...)
}

// Filter returns the listed records whose text contains query (case
// insensitive) and whose status equals status. Empty arguments match all.
func (c *Collection[T]) Filter(query, status string) []T {
	query = strings.ToLower(strings.TrimSpace(query))

	c.mu.Lock()
	defer c.mu.Unlock()
	out := []T{}
	for _, it := range c.items {
		if status != "" && it.StatusLabel() != status {
			continue
		}
		if query != "" && !strings.Contains(it.SearchText(), query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// State returns a snapshot for rendering
func (c *Collection[T]) State() CollectionState[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CollectionState[T]{
		Items:   append([]T{}, c.items...),
		Loading: c.inflight > 0,
		Error:   c.err,
	}
}

// Loading reports whether any request is in flight
func (c *Collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Err returns the message of the last failed request, empty after a success
func (c *Collection[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Collection[T]) upsertLocked(rec T) {
	id := rec.RecordID()
	for i := range c.items {
		if c.items[i].RecordID() == id {
			c.items[i] = rec
			return
		}
	}
	c.items = append(c.items, rec)
}

// noteLocked records a local write for the fetches in flight
func (c *Collection[T]) noteLocked(id string, gone bool) {
	if c.fetching == 0 {
		return
	}
	if c.touched == nil {
		c.touched = map[string]uint64{}
		c.removed = map[string]uint64{}
	}
	c.seq++
	if gone {
		delete(c.touched, id)
		c.removed[id] = c.seq
		return
	}
	delete(c.removed, id)
	c.touched[id] = c.seq
}

// mergeLocked lays the writes noted after start over a fetched list
func (c *Collection[T]) mergeLocked(fetched []T, start uint64) []T {
	out := make([]T, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, it := range fetched {
		id := it.RecordID()
		if c.removed[id] > start {
			continue
		}
		if c.touched[id] > start {
			if local := c.findLocked(id); local != nil {
				it = *local
			}
		}
		seen[id] = true
		out = append(out, it)
	}
	for _, it := range c.items {
		id := it.RecordID()
		if c.touched[id] > start && !seen[id] {
			seen[id] = true
			out = append(out, it)
		}
	}
	return out
}

func (c *Collection[T]) findLocked(id string) *T {
	for i := range c.items {
		if c.items[i].RecordID() == id {
			return &c.items[i]
		}
	}
	return nil
}

// ErrorMessage turns a request error into the single line shown to the user
func ErrorMessage(err error) string {
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	switch {
	case errors.Is(err, domain.ErrBackendUnavailable):
		return "Backend unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	}
	return err.Error()
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
