package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"laundry-state-backend/config"
	"laundry-state-backend/internal/model"
	"laundry-state-backend/internal/reconcile"
)

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	mu        sync.Mutex
	rooms     []model.Room
	locations []model.Location
}

func (m *mockStore) DB() *gorm.DB { return nil }

func (m *mockStore) GetMachine(ctx context.Context, opaqueID string) (*model.Machine, error) {
	return nil, nil
}

func (m *mockStore) UpsertMachine(ctx context.Context, rec *model.Machine) error { return nil }

func (m *mockStore) UpsertRooms(ctx context.Context, rooms []model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms = append(m.rooms, rooms...)
	return nil
}

func (m *mockStore) UpsertLocations(ctx context.Context, locations []model.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locations = append(m.locations, locations...)
	return nil
}

// mockEngine records every snapshot it is asked to reconcile.
type mockEngine struct {
	mu    sync.Mutex
	snaps []reconcile.Snapshot
}

func (m *mockEngine) Reconcile(ctx context.Context, snap reconcile.Snapshot) (reconcile.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return reconcile.Updated, nil
}

func (m *mockEngine) seen() []reconcile.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]reconcile.Snapshot, len(m.snaps))
	copy(out, m.snaps)
	return out
}

func testConfig(machinesURL, directoryURL string) *config.Config {
	cfg := &config.Config{}
	cfg.Poller.Request.MachinesURL = machinesURL
	cfg.Poller.Request.DirectoryURL = directoryURL
	cfg.Poller.Request.PageSize = 10
	cfg.WorkerPool.Size = 4
	return cfg
}

func TestPollOnce_DropsInvalidSnapshots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var resp MachinesResponse
		resp.Data.Page = 1
		resp.Data.PageSize = 10
		resp.Data.Total = 3
		resp.Data.Items = []reconcile.Snapshot{
			{OpaqueID: "W1", TimeRemaining: 30},
			{OpaqueID: "W2", TimeRemaining: -7}, // physically impossible, must be dropped
			{OpaqueID: "D1", TimeRemaining: 0},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	st := &mockStore{}
	eng := &mockEngine{}
	svc := NewService(testConfig(server.URL, ""), st, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.PollOnce(ctx)

	seen := eng.seen()
	ids := make([]string, len(seen))
	for i, s := range seen {
		ids[i] = s.OpaqueID
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"D1", "W1"}, ids, "the invalid snapshot must never reach the engine")
}

func TestPollOnce_RefreshesDirectory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/directory", func(w http.ResponseWriter, r *http.Request) {
		var resp DirectoryResponse
		resp.Data.Locations = []model.Location{{LocationID: "L1", Label: "North Campus", WasherCount: 6, DryerCount: 6}}
		resp.Data.Rooms = []model.Room{{RoomID: "R1", Label: "Basement", LocationID: "L1", WasherCount: 3, DryerCount: 3}}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/machines", func(w http.ResponseWriter, r *http.Request) {
		var resp MachinesResponse
		resp.Data.Total = 1
		resp.Data.Items = []reconcile.Snapshot{{OpaqueID: "W1", RoomID: "R1", TimeRemaining: 12}}
		json.NewEncoder(w).Encode(resp)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	st := &mockStore{}
	eng := &mockEngine{}
	svc := NewService(testConfig(server.URL+"/machines", server.URL+"/directory"), st, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.PollOnce(ctx)

	require.Len(t, st.locations, 1)
	assert.Equal(t, "L1", st.locations[0].LocationID)
	assert.False(t, st.locations[0].LastUpdated.IsZero())
	require.Len(t, st.rooms, 1)
	assert.Equal(t, "R1", st.rooms[0].RoomID)
	require.Len(t, eng.seen(), 1)
}

func TestPollOnce_AbortsWhenFetchFailsWithNoItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	st := &mockStore{}
	eng := &mockEngine{}
	svc := NewService(testConfig(server.URL, ""), st, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	svc.PollOnce(ctx)

	assert.Empty(t, eng.seen(), "a failed fetch with no items must not reconcile anything")
}

func TestWorkerPool_DispatchCompletesBatch(t *testing.T) {
	eng := &mockEngine{}
	wp := NewWorkerPool(2, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(3)
	wp.Dispatch(reconcile.Snapshot{OpaqueID: "W1", TimeRemaining: 1}, &wg)
	wp.Dispatch(reconcile.Snapshot{OpaqueID: "W2", TimeRemaining: 2}, &wg)
	wp.Dispatch(reconcile.Snapshot{OpaqueID: "W3", TimeRemaining: 3}, &wg)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the batch to be reconciled")
	}
	assert.Len(t, eng.seen(), 3)
}
