package ui

import (
	"sync"
	"time"

	"claimsportal/domain/claim"
	"claimsportal/domain/core"
	"claimsportal/internal"
	"claimsportal/internal/wizard"
)

const (
	draftCookie = "claim_draft"
	draftTTL    = 2 * time.Hour
)

type draftEntry struct {
	owner   claim.ID
	wizard  *wizard.Wizard
	touched time.Time
}

// DraftStore keeps one in-progress wizard per browser. Drafts live only in memory
// and are dropped after draftTTL without activity.
type DraftStore struct {
	mu      sync.Mutex
	entries map[core.DraftID]*draftEntry
	clock   core.Clock
	log     *internal.Logger
}

func NewDraftStore(clock core.Clock, log *internal.Logger) *DraftStore {
	return &DraftStore{
		entries: make(map[core.DraftID]*draftEntry),
		clock:   clock,
		log:     log,
	}
}

// Get returns the wizard stored under key if it belongs to owner and has not expired
func (d *DraftStore) Get(key string, owner claim.ID) (*wizard.Wizard, bool) {
	id, err := core.ParseDraftID(key)
	if err != nil {
		return nil, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	e, ok := d.entries[id]
	if !ok || e.owner != owner {
		return nil, false
	}
	now := d.clock.Now()
	if now.Sub(e.touched) > draftTTL {
		delete(d.entries, id)
		return nil, false
	}
	e.touched = now
	return e.wizard, true
}

// Create starts a new wizard for owner and returns its key
func (d *DraftStore) Create(owner claim.ID) (core.DraftID, *wizard.Wizard) {
	w := wizard.New(d.clock, wizard.WithLogger(d.log))
	id := core.NewDraftID()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune()
	d.entries[id] = &draftEntry{owner: owner, wizard: w, touched: d.clock.Now()}
	return id, w
}

// Delete drops the draft under key
func (d *DraftStore) Delete(key string) {
	id, err := core.ParseDraftID(key)
	if err != nil {
		return
	}
	d.mu.Lock()
	delete(d.entries, id)
	d.mu.Unlock()
}

// Len reports how many drafts are held
func (d *DraftStore) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *DraftStore) prune() {
	now := d.clock.Now()
	for id, e := range d.entries {
		if now.Sub(e.touched) > draftTTL {
			delete(d.entries, id)
		}
	}
}
