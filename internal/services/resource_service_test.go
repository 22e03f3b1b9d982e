package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wabdevconsult/batuta/domain"
	"github.com/wabdevconsult/batuta/internal/infrastructure/api"
)

func seededInstallations() []map[string]any {
	return []map[string]any{
		installationJSON("101", "Pompe à chaleur Dubois", domain.StatusScheduled),
		installationJSON("102", "Panneaux solaires Martin", domain.StatusInProgress),
		installationJSON("123", "Climatisation bureau", domain.StatusInProgress),
	}
}

func TestCollection_Fetch(t *testing.T) {
	_, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)

	require.NoError(t, col.Fetch(createTestContext(t)))

	state := col.State()
	require.Len(t, state.Items, 3)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)

	// client reference arrives expanded
	first := state.Items[0]
	assert.True(t, first.Client.IsExpanded())
	assert.Equal(t, "Boulangerie Dubois", first.Client.Expanded.Name())
}

func TestCollection_FailedFetchKeepsList(t *testing.T) {
	backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)
	require.NoError(t, col.Fetch(ctx))

	backend.setFailing(true)
	err := col.Fetch(ctx)

	require.Error(t, err)
	state := col.State()
	assert.Len(t, state.Items, 3)
	assert.Equal(t, "Service indisponible", state.Error)
	assert.False(t, state.Loading)

	// a later success clears the error
	backend.setFailing(false)
	require.NoError(t, col.Fetch(ctx))
	assert.Empty(t, col.Err())
}

func TestCollection_FetchUnreachable(t *testing.T) {
	col := NewEquipments(api.NewClient("http://127.0.0.1:1", time.Second, nil))
	col.items = []domain.Equipment{{ID: "e1", Name: "Onduleur"}}

	err := col.Fetch(createTestContext(t))

	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	assert.Len(t, col.Items(), 1)
	assert.Equal(t, "Backend unavailable", col.Err())
}

func TestCollection_CreateAndFetchConverge(t *testing.T) {
	tests := []struct {
		name  string
		order func(t *testing.T, backend *fakeREST, col *Collection[domain.Installation])
	}{
		{
			name: "create resolves before fetch",
			order: func(t *testing.T, backend *fakeREST, col *Collection[domain.Installation]) {
				ctx := createTestContext(t)
				_, err := col.Create(ctx, domain.Installation{ID: "200", Title: "Nouvelle", Status: domain.StatusScheduled})
				require.NoError(t, err)
				require.NoError(t, col.Fetch(ctx))
			},
		},
		{
			name: "fetch resolves before create",
			order: func(t *testing.T, backend *fakeREST, col *Collection[domain.Installation]) {
				ctx := createTestContext(t)
				require.NoError(t, col.Fetch(ctx))
				_, err := col.Create(ctx, domain.Installation{ID: "200", Title: "Nouvelle", Status: domain.StatusScheduled})
				require.NoError(t, err)
			},
		},
		{
			name: "fetch answered with the new record before create answers",
			order: func(t *testing.T, backend *fakeREST, col *Collection[domain.Installation]) {
				ctx := createTestContext(t)
				release := backend.hold(http.MethodPost)

				// the record reaches the backend list first, then both requests resolve
				backend.mu.Lock()
				backend.put(installationJSON("200", "Nouvelle", domain.StatusScheduled))
				backend.mu.Unlock()

				done := make(chan error)
				go func() {
					_, err := col.Create(ctx, domain.Installation{ID: "200", Title: "Nouvelle", Status: domain.StatusScheduled})
					done <- err
				}()
				require.NoError(t, col.Fetch(ctx))
				release()
				require.NoError(t, <-done)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
			col := NewInstallations(client)

			tt.order(t, backend, col)

			items := col.Items()
			assert.Len(t, items, 4)
			count := 0
			for _, it := range items {
				if it.ID == "200" {
					count++
				}
			}
			assert.Equal(t, 1, count, "created record listed exactly once")
		})
	}
}

func TestCollection_WritesSurviveStaleFetch(t *testing.T) {
	tests := []struct {
		name   string
		write  func(ctx context.Context, col *Collection[domain.Installation]) error
		expect func(t *testing.T, items []domain.Installation)
	}{
		{
			name: "create",
			write: func(ctx context.Context, col *Collection[domain.Installation]) error {
				_, err := col.Create(ctx, domain.Installation{ID: "200", Title: "Nouvelle", Status: domain.StatusScheduled})
				return err
			},
			expect: func(t *testing.T, items []domain.Installation) {
				assert.Len(t, items, 4)
				assert.Equal(t, "200", items[3].ID)
			},
		},
		{
			name: "update",
			write: func(ctx context.Context, col *Collection[domain.Installation]) error {
				_, err := col.Update(ctx, "123", Patch{"status": domain.StatusCompleted})
				return err
			},
			expect: func(t *testing.T, items []domain.Installation) {
				require.Len(t, items, 3)
				assert.Equal(t, domain.StatusCompleted, items[2].Status)
			},
		},
		{
			name: "remove",
			write: func(ctx context.Context, col *Collection[domain.Installation]) error {
				_, err := col.Remove(ctx, "101")
				return err
			},
			expect: func(t *testing.T, items []domain.Installation) {
				require.Len(t, items, 2)
				assert.Equal(t, "102", items[0].ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
			col := NewInstallations(client)
			ctx := createTestContext(t)
			require.NoError(t, col.Fetch(ctx))

			// the list is read before the write lands but answered after it
			release := backend.holdListAnswer()
			defer release()
			done := make(chan error)
			go func() { done <- col.Fetch(ctx) }()
			require.Eventually(t, func() bool { return backend.listCount() == 2 }, time.Second, 5*time.Millisecond)

			require.NoError(t, tt.write(ctx, col))
			release()
			require.NoError(t, <-done)

			tt.expect(t, col.Items())

			// the next fetch agrees with the backend
			require.NoError(t, col.Fetch(ctx))
			tt.expect(t, col.Items())
		})
	}
}

func TestCollection_IDIsPathEscaped(t *testing.T) {
	backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)
	require.NoError(t, col.Fetch(ctx))

	ok, err := col.Remove(ctx, "101?ignored")

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	backend.mu.Lock()
	_, stored := backend.records["101"]
	backend.mu.Unlock()
	assert.True(t, stored, "backend record untouched")
	assert.NotNil(t, col.Lookup("101"))
}

func TestCollection_RemoveTwice(t *testing.T) {
	_, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)
	require.NoError(t, col.Fetch(ctx))

	ok, err := col.Remove(ctx, "101")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, col.Items(), 2)

	ok, err = col.Remove(ctx, "101")
	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotEmpty(t, col.Err())
	assert.Len(t, col.Items(), 2)
	assert.Nil(t, col.Lookup("101"))
}

func TestCollection_UpdateReplacesEntry(t *testing.T) {
	_, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)
	require.NoError(t, col.Fetch(ctx))

	updated, err := col.Update(ctx, "123", Patch{"status": domain.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	matches := 0
	for _, it := range col.Items() {
		if it.ID == "123" {
			matches++
			assert.Equal(t, domain.StatusCompleted, it.Status)
		}
	}
	assert.Equal(t, 1, matches)
}

func TestCollection_UpdateFailureKeepsEntry(t *testing.T) {
	backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)
	require.NoError(t, col.Fetch(ctx))

	backend.setFailing(true)
	updated, err := col.Update(ctx, "123", Patch{"status": domain.StatusCompleted})

	require.Error(t, err)
	assert.Nil(t, updated)
	assert.Equal(t, domain.StatusInProgress, col.Lookup("123").Status)
	assert.Equal(t, "Service indisponible", col.Err())
}

func TestCollection_Get(t *testing.T) {
	_, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)

	rec, err := col.Get(ctx, "102")
	require.NoError(t, err)
	assert.Equal(t, "Panneaux solaires Martin", rec.Title)
	assert.Empty(t, col.Items(), "Get does not touch the list")

	rec, err = col.Get(ctx, "999")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollection_Transition(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.Role
		id        string
		to        domain.WorkStatus
		expectErr error
	}{
		{"technicien starts a scheduled job", domain.RoleTechnicien, "101", domain.StatusInProgress, nil},
		{"technicien completes", domain.RoleTechnicien, "123", domain.StatusCompleted, nil},
		{"technicien cannot cancel", domain.RoleTechnicien, "101", domain.StatusCancelled, domain.ErrIllegalTransition},
		{"admin cancels", domain.RoleAdmin, "102", domain.StatusCancelled, nil},
		{"no skipping ahead", domain.RoleAdmin, "101", domain.StatusCompleted, domain.ErrIllegalTransition},
		{"client has no transitions", domain.RoleClient, "101", domain.StatusInProgress, domain.ErrIllegalTransition},
		{"unknown record", domain.RoleAdmin, "999", domain.StatusInProgress, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
			col := NewInstallations(client)
			ctx := createTestContext(t)
			require.NoError(t, col.Fetch(ctx))

			rec, err := col.Transition(ctx, tt.role, tt.id, string(tt.to))

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				assert.Nil(t, rec)
				if existing := col.Lookup(tt.id); existing != nil {
					backend.mu.Lock()
					assert.Equal(t, string(existing.Status), backend.records[tt.id]["status"], "nothing sent to the backend")
					backend.mu.Unlock()
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, rec.Status)
			assert.Equal(t, tt.to, col.Lookup(tt.id).Status)
		})
	}
}

func TestCollection_TransitionOtherLifecycles(t *testing.T) {
	t.Run("quote requests", func(t *testing.T) {
		_, client := newFakeREST(t, domain.ResourceQuoteRequests,
			map[string]any{"id": "q1", "status": "pending"},
			map[string]any{"id": "q2", "status": "quoted"},
		)
		col := NewQuoteRequests(client)
		ctx := createTestContext(t)
		require.NoError(t, col.Fetch(ctx))

		_, err := col.Transition(ctx, domain.RoleClient, "q1", string(domain.QuoteQuoted))
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)

		rec, err := col.Transition(ctx, domain.RoleAdmin, "q1", string(domain.QuoteQuoted))
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteQuoted, rec.Status)

		_, err = col.Transition(ctx, domain.RoleClient, "q2", string(domain.QuoteAccepted))
		require.NoError(t, err)
		assert.Equal(t, domain.QuoteAccepted, col.Lookup("q2").Status)

		_, err = col.Transition(ctx, domain.RoleAdmin, "q2", string(domain.QuoteRejected))
		assert.ErrorIs(t, err, domain.ErrIllegalTransition, "accepted is terminal")
	})

	t.Run("clients", func(t *testing.T) {
		_, client := newFakeREST(t, domain.ResourceClients, map[string]any{"id": "c1", "companyName": "Dubois", "status": "active"})
		col := NewClients(client)
		ctx := createTestContext(t)
		require.NoError(t, col.Fetch(ctx))

		_, err := col.Transition(ctx, domain.RoleTechnicien, "c1", string(domain.ClientInactive))
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)

		rec, err := col.Transition(ctx, domain.RoleAdmin, "c1", string(domain.ClientInactive))
		require.NoError(t, err)
		assert.Equal(t, domain.ClientInactive, rec.Status)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, client := newFakeREST(t, domain.ResourceEquipments, map[string]any{"id": "e1", "name": "Onduleur", "status": "scheduled"})
		col := NewEquipments(client)
		ctx := createTestContext(t)
		require.NoError(t, col.Fetch(ctx))

		assert.True(t, col.KnownStatus("in_progress"))
		assert.False(t, col.KnownStatus("quoted"))
		_, err := col.Transition(ctx, domain.RoleAdmin, "e1", "quoted")
		assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	})
}

func TestCollection_Filter(t *testing.T) {
	_, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	require.NoError(t, col.Fetch(createTestContext(t)))

	tests := []struct {
		name   string
		query  string
		status string
		expect []string
	}{
		{"no filter", "", "", []string{"101", "102", "123"}},
		{"case insensitive title", "SOLAIRES", "", []string{"102"}},
		{"matches expanded client name", "dubois", "", []string{"101", "102", "123"}},
		{"status only", "", "in_progress", []string{"102", "123"}},
		{"query and status", "clim", "in_progress", []string{"123"}},
		{"no match", "éolienne", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := []string{}
			for _, it := range col.Filter(tt.query, tt.status) {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.expect, ids)
		})
	}
}

func TestCollection_CancelledResultIsDiscarded(t *testing.T) {
	backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	col.items = []domain.Installation{{ID: "old", Status: domain.StatusScheduled}}

	release := backend.hold(http.MethodGet)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- col.Fetch(ctx) }()

	require.Eventually(t, col.Loading, time.Second, 5*time.Millisecond)
	cancel()
	err := <-done

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, col.Loading())
	assert.Empty(t, col.Err())
	require.Len(t, col.Items(), 1)
	assert.Equal(t, "old", col.Items()[0].ID)
}

func TestCollection_LoadingCountsEveryRequest(t *testing.T) {
	backend, client := newFakeREST(t, domain.ResourceInstallations, seededInstallations()...)
	col := NewInstallations(client)
	ctx := createTestContext(t)

	releaseGet := backend.hold(http.MethodGet)
	releaseDelete := backend.hold(http.MethodDelete)

	fetchDone := make(chan error)
	removeDone := make(chan error)
	go func() { fetchDone <- col.Fetch(ctx) }()
	go func() {
		_, err := col.Remove(ctx, "101")
		removeDone <- err
	}()
	require.Eventually(t, func() bool {
		col.mu.Lock()
		defer col.mu.Unlock()
		return col.inflight == 2
	}, time.Second, 5*time.Millisecond)

	releaseDelete()
	require.NoError(t, <-removeDone)
	assert.True(t, col.Loading(), "fetch still pending")

	releaseGet()
	require.NoError(t, <-fetchDone)
	assert.False(t, col.Loading())
}
