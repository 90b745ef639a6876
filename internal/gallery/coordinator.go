// The gallery sync coordinator keeps the locally-held image list
// consistent with the backend, detects generation-job completion by
// polling the queue, and refreshes the gallery without disturbing the
// user's current viewing context.

package gallery

import (
	"context"
	"log"
	"sync"
	"time"

	"imagedeck/internal/backend"
	"imagedeck/internal/models"
)

// Fetcher is the slice of the backend client the coordinator consumes.
type Fetcher interface {
	ListImages(ctx context.Context, q backend.ListQuery) (*models.ImageList, error)
	ComfyQueue(ctx context.Context) (*models.QueueSnapshot, error)
}

// Notifier receives session events for connected UIs. The websocket
// hub implements it; a nil Notifier disables broadcasting.
type Notifier interface {
	BroadcastJSON(v interface{})
}

// Filter is the current gallery filter state; it flows into every list
// fetch.
type Filter struct {
	Keyword string `json:"keyword"`
	Folder  string `json:"folder"`
	Model   string `json:"model"`
	Lora    string `json:"lora"`
	Sort    string `json:"sort"`
}

// Options are the coordinator's timing knobs.
type Options struct {
	PollInterval       time.Duration // queue poll cadence
	CompletionDebounce time.Duration // wait after the queue drains before refreshing
	IdleResync         time.Duration // max staleness with an idle queue
	PageSize           int
}

// DefaultOptions returns the stock timing values.
func DefaultOptions() Options {
	return Options{
		PollInterval:       2 * time.Second,
		CompletionDebounce: 750 * time.Millisecond,
		IdleResync:         12 * time.Second,
		PageSize:           30,
	}
}

// Coordinator owns the gallery list, the selection, and the polling
// loop. All state is guarded by one mutex; the polling and refresh
// paths additionally carry in-flight guards so overlapping triggers
// collapse into a single network call.
type Coordinator struct {
	client Fetcher
	hub    Notifier
	opts   Options
	now    func() time.Time

	mu       sync.Mutex
	images   []*models.ImageRecord
	byPath   map[string]*models.ImageRecord
	selected *models.ImageRecord
	filter   Filter
	page     int
	hasMore  bool

	connected  bool
	snapshot   *models.QueueSnapshot
	prevActive int
	lastSync   time.Time

	pollInFlight    bool
	refreshInFlight bool
	debounceArmed   bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a Coordinator. A nil now falls back to time.Now.
func New(client Fetcher, hub Notifier, opts Options) *Coordinator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.CompletionDebounce <= 0 {
		opts.CompletionDebounce = 750 * time.Millisecond
	}
	if opts.IdleResync <= 0 {
		opts.IdleResync = 12 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 30
	}
	return &Coordinator{
		client: client,
		hub:    hub,
		opts:   opts,
		now:    time.Now,
		byPath: make(map[string]*models.ImageRecord),
		stop:   make(chan struct{}),
	}
}

// SetClock swaps the time source; tests use this to control staleness.
func (c *Coordinator) SetClock(now func() time.Time) { c.now = now }

// Start launches the polling loop. The loop ticks at the configured
// interval; a tick whose previous poll has not settled is skipped, not
// queued.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stop:
				return
			case <-ticker.C:
				c.PollOnce(ctx)
			}
		}
	}()
}

// Stop terminates the polling loop and waits for it to exit.
func (c *Coordinator) Stop() {
	close(c.stop)
	c.wg.Wait()
}

// PollOnce performs one queue poll cycle. Network failures flip the
// connected flag and nothing else; the loop never dies. If a previous
// poll is still in flight the call returns immediately.
func (c *Coordinator) PollOnce(ctx context.Context) {
	c.mu.Lock()
	if c.pollInFlight {
		c.mu.Unlock()
		return
	}
	c.pollInFlight = true
	c.mu.Unlock()

	snap, err := c.client.ComfyQueue(ctx)

	c.mu.Lock()
	c.pollInFlight = false
	if err != nil {
		if c.connected {
			log.Printf("Queue poll failed, marking backend disconnected: %v", err)
		}
		c.connected = false
		c.mu.Unlock()
		return
	}
	c.connected = true
	c.snapshot = snap

	active := snap.ActiveCount()
	completed := c.prevActive > 0 && active == 0
	// A never-synced gallery counts as stale.
	idle := active == 0 && (c.lastSync.IsZero() || c.now().Sub(c.lastSync) > c.opts.IdleResync)
	c.prevActive = active

	arm := false
	if completed && !c.debounceArmed {
		// Give the backend a moment to finish writing the output file
		// and its metadata before re-listing.
		c.debounceArmed = true
		arm = true
	}
	c.mu.Unlock()

	c.broadcast(models.ProgressUpdate{Event: "queue_update", Connected: true, Progress: float64(active)})

	if arm {
		time.AfterFunc(c.opts.CompletionDebounce, func() {
			c.mu.Lock()
			c.debounceArmed = false
			c.mu.Unlock()
			if err := c.Refresh(context.Background()); err != nil {
				log.Printf("Post-completion refresh failed: %v", err)
			}
		})
		return
	}

	if idle {
		if err := c.Refresh(ctx); err != nil {
			log.Printf("Idle resync failed: %v", err)
		}
	}
}

// Refresh re-fetches page 1 of the filtered list and replaces the
// local list wholesale. Records whose path survives the refresh keep
// their object identity (new fields are merged in), so an open viewer
// never misreads a refresh as an image switch. A failed refresh leaves
// the current list untouched. Concurrent calls collapse into one.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshInFlight {
		c.mu.Unlock()
		return nil
	}
	c.refreshInFlight = true
	q := c.listQuery(1)
	c.mu.Unlock()

	list, err := c.client.ListImages(ctx, q)

	c.mu.Lock()
	c.refreshInFlight = false
	if err != nil {
		c.mu.Unlock()
		return err
	}

	fresh := make([]*models.ImageRecord, 0, len(list.Images))
	freshByPath := make(map[string]*models.ImageRecord, len(list.Images))
	for _, rec := range list.Images {
		if existing, ok := c.byPath[rec.FilePath]; ok {
			existing.Merge(rec)
			rec = existing
		}
		if _, dup := freshByPath[rec.FilePath]; dup {
			continue
		}
		fresh = append(fresh, rec)
		freshByPath[rec.FilePath] = rec
	}
	c.images = fresh
	c.byPath = freshByPath
	c.page = 1
	c.hasMore = list.HasMore
	c.lastSync = c.now()

	// Selection follows the surviving record; when the path is gone (or
	// nothing was selected yet) the first image takes over, and an empty
	// gallery clears it.
	if c.selected != nil {
		if survivor, ok := freshByPath[c.selected.FilePath]; ok {
			c.selected = survivor
		} else if len(fresh) > 0 {
			c.selected = fresh[0]
		} else {
			c.selected = nil
		}
	} else if len(fresh) > 0 {
		c.selected = fresh[0]
	}
	count := len(fresh)
	c.mu.Unlock()

	c.broadcast(models.ProgressUpdate{Event: "gallery_synced", Connected: true, Message: "gallery refreshed", Done: true})
	log.Printf("Gallery refreshed: %d images", count)
	return nil
}

// LoadMore fetches the next page and appends only records whose path
// is not already present. Retries and overlapping triggers must never
// produce duplicates.
func (c *Coordinator) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshInFlight || !c.hasMore {
		c.mu.Unlock()
		return nil
	}
	c.refreshInFlight = true
	next := c.page + 1
	q := c.listQuery(next)
	c.mu.Unlock()

	list, err := c.client.ListImages(ctx, q)

	c.mu.Lock()
	c.refreshInFlight = false
	if err != nil {
		c.mu.Unlock()
		return err
	}
	for _, rec := range list.Images {
		if _, ok := c.byPath[rec.FilePath]; ok {
			continue
		}
		c.images = append(c.images, rec)
		c.byPath[rec.FilePath] = rec
	}
	c.page = next
	c.hasMore = list.HasMore
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) listQuery(page int) backend.ListQuery {
	return backend.ListQuery{
		Keyword:  c.filter.Keyword,
		Folder:   c.filter.Folder,
		Model:    c.filter.Model,
		Lora:     c.filter.Lora,
		Sort:     c.filter.Sort,
		Page:     page,
		PageSize: c.opts.PageSize,
	}
}

// SetFilter replaces the filter state and refreshes.
func (c *Coordinator) SetFilter(ctx context.Context, f Filter) error {
	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Filter returns the current filter state.
func (c *Coordinator) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// Select marks the record with the given path as the open image and
// returns it; an unknown path clears the selection.
func (c *Coordinator) Select(path string) *models.ImageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = c.byPath[path]
	return c.selected
}

// Selected returns the currently open record, or nil.
func (c *Coordinator) Selected() *models.ImageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Images returns a snapshot copy of the current list.
func (c *Coordinator) Images() []*models.ImageRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*models.ImageRecord, len(c.images))
	copy(out, c.images)
	return out
}

// HasMore reports whether further pages exist.
func (c *Coordinator) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// Connected reports whether the last poll reached the backend.
func (c *Coordinator) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Queue returns the most recent queue snapshot, or nil before the
// first successful poll.
func (c *Coordinator) Queue() *models.QueueSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

func (c *Coordinator) broadcast(update models.ProgressUpdate) {
	if c.hub != nil {
		c.hub.BroadcastJSON(update)
	}
}
