// Package machine drives one prize-drawing session: draw, accept or decline,
// reset. All mutation of inventory and session state happens here.
package machine

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/prize-gacha/internal/catalog"
	"github.com/xtding233/prize-gacha/internal/gacha"
	"github.com/xtding233/prize-gacha/internal/inventory"
)

var (
	ErrStockExhausted  = errors.New("stock exhausted")
	ErrNoPriorAward    = errors.New("no draw to decline")
	ErrNotDeclinable   = errors.New("only top-tier prizes may be declined")
	ErrDrawInProgress  = errors.New("draw already in progress")
	ErrTriggerDisabled = errors.New("draw trigger disabled")
)

// State of the draw lifecycle.
type State int

const (
	Idle State = iota
	Drawing
	Result
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Result:
		return "result"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Messages supplies user-facing status text.
type Messages interface {
	Pending() string
	Awarded(name string) string
	Exhausted() string
	NoPriorAward() string
	NotDeclinable() string
	Declined(name string, remaining []string) string
	ResetDone() string
	DrawInProgress() string
	TriggerDisabled() string
}

// Award is one committed draw.
type Award struct {
	ID        string        `json:"id"`
	Prize     catalog.Prize `json:"prize"`
	Remaining int           `json:"remaining"`
	At        time.Time     `json:"at"`
}

// Outcome is delivered once per accepted draw request, after the delay.
type Outcome struct {
	Award *Award
	Err   error
}

// Snapshot is a consistent copy of everything a renderer may display.
type Snapshot struct {
	State          State               `json:"state"`
	Inventory      inventory.Inventory `json:"inventory"`
	Session        Session             `json:"session"`
	TriggerEnabled bool                `json:"trigger_enabled"`
	Status         Status              `json:"status"`
	Prizes         []catalog.Prize     `json:"prizes"`
}

// Options wires the controller's collaborators. Zero values get defaults:
// crypto RNG, real timers, no rendering, discarded logs, uuid ids.
type Options struct {
	RNG       gacha.RandomSource
	Scheduler Scheduler
	Renderer  Renderer
	Messages  Messages
	Log       *slog.Logger
	Now       func() time.Time
	NewID     func() string
}

// Controller owns Inventory and Session. Commands are serialized by a mutex;
// renderer callbacks are queued while locked and delivered after unlocking.
type Controller struct {
	mu sync.Mutex

	cat     *catalog.Catalog
	store   *inventory.Store
	inv     inventory.Inventory
	session Session
	state   State
	trigger bool
	status  Status
	// draws scheduled but not yet completed; at most one
	pending int

	// staged catalog, adopted on the next reset
	nextCat   *catalog.Catalog
	nextStore *inventory.Store

	rng   gacha.RandomSource
	sched Scheduler
	view  Renderer
	msg   Messages
	log   *slog.Logger
	now   func() time.Time
	newID func() string

	notes []func()
}

// New loads the persisted inventory through store and starts in Idle.
func New(cat *catalog.Catalog, store *inventory.Store, msg Messages, opts Options) *Controller {
	c := &Controller{
		cat:     cat,
		store:   store,
		state:   Idle,
		trigger: true,
		rng:     opts.RNG,
		sched:   opts.Scheduler,
		view:    opts.Renderer,
		msg:     msg,
		log:     opts.Log,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if c.rng == nil {
		c.rng = gacha.DefaultRNG()
	}
	if c.sched == nil {
		c.sched = RealScheduler{}
	}
	if c.view == nil {
		c.view = NopRenderer{}
	}
	if c.log == nil {
		c.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}

	c.mu.Lock()
	c.inv = store.Load()
	c.noteInventory()
	c.noteTrigger()
	c.unlock()
	return c
}

// RequestDraw starts a draw. The returned channel receives exactly one
// Outcome once the catalog's draw delay has elapsed; a pending draw cannot be
// cancelled. An error means no draw was started.
func (c *Controller) RequestDraw() (<-chan Outcome, error) {
	c.mu.Lock()
	defer c.unlock()

	switch {
	case c.pending > 0:
		c.setStatus(c.msg.DrawInProgress(), StatusError)
		return nil, ErrDrawInProgress
	case c.state == Exhausted && !c.anyEligible():
		c.setStatus(c.msg.Exhausted(), StatusError)
		return nil, ErrStockExhausted
	case !c.trigger && c.state != Exhausted:
		c.setStatus(c.msg.TriggerDisabled(), StatusError)
		return nil, ErrTriggerDisabled
	}

	if !c.anyEligible() {
		c.exhaust()
		return nil, ErrStockExhausted
	}

	c.state = Drawing
	c.pending++
	c.setTrigger(false)
	c.setStatus(c.msg.Pending(), StatusPending)

	ch := make(chan Outcome, 1)
	c.sched.AfterFunc(c.cat.DrawDelay, func() { c.complete(ch) })
	return ch, nil
}

// complete runs when the draw delay elapses.
func (c *Controller) complete(ch chan<- Outcome) {
	c.mu.Lock()
	defer c.unlock()
	c.pending--

	prize, ok := gacha.Pick(c.cat, c.inv, c.session.HighTierExcluded, c.rng)
	if !ok {
		c.exhaust()
		ch <- Outcome{Err: ErrStockExhausted}
		return
	}

	c.inv[prize.ID]--
	c.persist()
	c.session.LastAwardID = prize.ID
	c.state = Result
	c.setTrigger(c.cat.TriggerPolicy != catalog.PolicyOneShot)
	c.setStatus(c.msg.Awarded(prize.Name), StatusSuccess)
	c.noteInventory()

	award := &Award{ID: c.newID(), Prize: prize, Remaining: c.inv[prize.ID], At: c.now()}
	c.log.Info("prize awarded",
		slog.String("award_id", award.ID),
		slog.String("prize", prize.ID),
		slog.Int("remaining", award.Remaining),
		slog.Bool("high_tier_excluded", c.session.HighTierExcluded))
	ch <- Outcome{Award: award}
}

// DeclineLastAward returns the last awarded high-tier prize to stock and
// removes every high-tier prize from later draws until the next reset.
func (c *Controller) DeclineLastAward() (catalog.Prize, error) {
	c.mu.Lock()
	defer c.unlock()

	if !c.session.HasLastAward() {
		c.setStatus(c.msg.NoPriorAward(), StatusError)
		return catalog.Prize{}, ErrNoPriorAward
	}
	prize, _ := c.cat.Lookup(c.session.LastAwardID)
	if !c.cat.IsHighTier(prize.ID) {
		c.setStatus(c.msg.NotDeclinable(), StatusError)
		return catalog.Prize{}, ErrNotDeclinable
	}

	c.inv[prize.ID]++
	c.persist()
	c.session.HighTierExcluded = true
	c.session.LastAwardID = ""
	// the restored unit is excluded from now on, so Exhausted stays terminal
	if c.state != Drawing && c.state != Exhausted {
		c.setTrigger(true)
	}

	var rest []string
	for _, p := range c.cat.Prizes() {
		if !p.HighTier {
			rest = append(rest, p.Name)
		}
	}
	c.setStatus(c.msg.Declined(prize.Name, rest), StatusSuccess)
	c.noteInventory()
	c.log.Info("prize declined", slog.String("prize", prize.ID), slog.Int("remaining", c.inv[prize.ID]))
	return prize, nil
}

// ResetInventory restores the baseline stock, clears the session and
// re-enables the trigger. A staged catalog takes effect here. A pending draw
// is not cancelled: the controller stays Drawing until it completes against
// the restored stock.
func (c *Controller) ResetInventory() {
	c.mu.Lock()
	defer c.unlock()

	if c.nextCat != nil {
		c.cat, c.store = c.nextCat, c.nextStore
		c.nextCat, c.nextStore = nil, nil
		c.log.Info("catalog swapped", slog.String("version", c.cat.Version), slog.String("key", c.store.Key()))
	}
	inv, err := c.store.Reset()
	if err != nil {
		c.log.Error("inventory reset not persisted", slog.Any("err", err))
	}
	c.inv = inv
	c.session = Session{}
	if c.pending == 0 {
		c.state = Idle
		c.setTrigger(true)
	}
	c.setStatus(c.msg.ResetDone(), StatusSuccess)
	c.noteInventory()
	c.log.Info("inventory reset", slog.Int("total", inv.Total()))
}

// StageCatalog queues a new catalog and its store; the running session keeps
// the current one until ResetInventory.
func (c *Controller) StageCatalog(cat *catalog.Catalog, store *inventory.Store) {
	c.mu.Lock()
	defer c.unlock()
	c.nextCat, c.nextStore = cat, store
	c.log.Info("catalog staged", slog.String("version", cat.Version))
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:          c.state,
		Inventory:      c.inv.Clone(),
		Session:        c.session,
		TriggerEnabled: c.trigger,
		Status:         c.status,
		Prizes:         c.cat.Prizes(),
	}
}

// Catalog returns the catalog in effect.
func (c *Controller) Catalog() *catalog.Catalog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cat
}

// ---- helpers, called with mu held ----

func (c *Controller) anyEligible() bool {
	return len(gacha.Eligible(c.cat, c.inv, c.session.HighTierExcluded)) > 0
}

func (c *Controller) exhaust() {
	c.state = Exhausted
	c.setTrigger(false)
	c.setStatus(c.msg.Exhausted(), StatusError)
	c.log.Warn("stock exhausted", slog.Bool("high_tier_excluded", c.session.HighTierExcluded))
}

func (c *Controller) persist() {
	if err := c.store.Save(c.inv); err != nil {
		c.log.Error("inventory not persisted", slog.Any("err", err))
	}
}

func (c *Controller) setTrigger(on bool) {
	if c.trigger == on {
		return
	}
	c.trigger = on
	c.noteTrigger()
}

func (c *Controller) setStatus(msg string, kind StatusKind) {
	c.status = Status{Message: msg, Kind: kind}
	c.notes = append(c.notes, func() { c.view.StatusChanged(msg, kind) })
}

func (c *Controller) noteInventory() {
	inv := c.inv.Clone()
	c.notes = append(c.notes, func() { c.view.InventoryChanged(inv) })
}

func (c *Controller) noteTrigger() {
	on := c.trigger
	c.notes = append(c.notes, func() { c.view.TriggerEnabledChanged(on) })
}

// unlock releases mu and then delivers queued renderer callbacks.
func (c *Controller) unlock() {
	notes := c.notes
	c.notes = nil
	c.mu.Unlock()
	for _, f := range notes {
		f()
	}
}
