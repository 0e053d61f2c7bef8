package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"laundry-state-backend/config"
	"laundry-state-backend/internal/reconcile"
	"laundry-state-backend/internal/store"
)

// Service ingests machine snapshots from the upstream API on a fixed
// interval and feeds them through the reconcile engine. It also refreshes
// the room/location directory, which nothing else writes.
type Service struct {
	cfg    *config.Config
	store  store.Store
	client *http.Client
	pool   *WorkerPool
}

// NewService creates and initializes a new poller service.
func NewService(cfg *config.Config, st store.Store, engine Reconciler) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Poller.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Poller.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Poller will not use a proxy.", cfg.Poller.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:   cfg,
		store: st,
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
		pool: NewWorkerPool(cfg.WorkerPool.Size, engine),
	}
}

// Start launches the reconcile workers. It must be called before PollOnce;
// Run does so itself.
func (s *Service) Start(ctx context.Context) {
	s.pool.Start(ctx)
}

// Run starts the polling loop.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Poller.Enabled {
		log.Println("Poller is disabled. Not starting.")
		return
	}
	log.Println("Starting poller service...")

	s.Start(ctx)

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Poller.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Poller service shutting down.")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Poller.Interval)
		}
	}
}

// PollOnce performs a single ingestion cycle: refresh the directory, fetch
// every machine snapshot, and reconcile the batch. It returns once the
// whole batch has been applied.
func (s *Service) PollOnce(ctx context.Context) {
	log.Println("Executing poll cycle...")
	now := time.Now().UTC()

	if err := s.refreshDirectory(ctx, now); err != nil {
		// Reference data is read-mostly; a stale directory does not block
		// machine reconciliation.
		log.Printf("Error refreshing room/location directory: %v", err)
	}

	var snapshots []reconcile.Snapshot
	total := 1
	pageSize := s.cfg.Poller.Request.PageSize
	var fetchErr error
	for page := 1; (page-1)*pageSize < total; page++ {
		resp, err := s.fetchMachinesPage(ctx, page)
		if err != nil {
			log.Printf("Error fetching page %d: %v", page, err)
			fetchErr = err
			break
		}
		if resp.Data.Total == 0 || len(resp.Data.Items) == 0 {
			break
		}
		total = resp.Data.Total
		snapshots = append(snapshots, resp.Data.Items...)
	}

	if fetchErr != nil && len(snapshots) == 0 {
		log.Println("Poll cycle aborted due to fetch error with no snapshots retrieved. Machine state will not be updated.")
		return
	}

	// Invalid snapshots are dropped here, never retried, and never reach the
	// engine or the store.
	valid := snapshots[:0]
	for _, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			if errors.Is(err, reconcile.ErrInvalidTimeRemaining) {
				log.Printf("Dropping snapshot: %v", err)
				continue
			}
			log.Printf("Dropping snapshot for machine %s: %v", snap.OpaqueID, err)
			continue
		}
		valid = append(valid, snap)
	}

	var wg sync.WaitGroup
	wg.Add(len(valid))
	for _, snap := range valid {
		s.pool.Dispatch(snap, &wg)
	}
	wg.Wait()

	log.Printf("Poll cycle finished: %d snapshots reconciled.", len(valid))
}

// refreshDirectory fetches and upserts the room/location reference data.
func (s *Service) refreshDirectory(ctx context.Context, now time.Time) error {
	if s.cfg.Poller.Request.DirectoryURL == "" {
		return nil
	}

	body, err := s.post(ctx, s.cfg.Poller.Request.DirectoryURL, map[string]any{})
	if err != nil {
		return err
	}

	var resp DirectoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to unmarshal directory response: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("directory API returned non-zero application code: %d", resp.Code)
	}

	for i := range resp.Data.Locations {
		resp.Data.Locations[i].LastUpdated = now
	}
	for i := range resp.Data.Rooms {
		resp.Data.Rooms[i].LastUpdated = now
	}

	if err := s.store.UpsertLocations(ctx, resp.Data.Locations); err != nil {
		return err
	}
	return s.store.UpsertRooms(ctx, resp.Data.Rooms)
}

// fetchMachinesPage fetches a single page of machine snapshots.
func (s *Service) fetchMachinesPage(ctx context.Context, page int) (*MachinesResponse, error) {
	payload := make(map[string]any)
	for k, v := range s.cfg.Poller.Request.Payload {
		payload[k] = v
	}
	payload["page"] = page
	payload["pageSize"] = s.cfg.Poller.Request.PageSize

	body, err := s.post(ctx, s.cfg.Poller.Request.MachinesURL, payload)
	if err != nil {
		return nil, err
	}

	var resp MachinesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal machines response: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("machines API returned non-zero application code: %d", resp.Code)
	}
	return &resp, nil
}

func (s *Service) post(ctx context.Context, rawURL string, payload map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.cfg.Poller.Request.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
