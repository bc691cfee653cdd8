package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
)

// CallRecord describes one finished procedure call.
type CallRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Procedure string    `json:"procedure" yaml:"procedure"`
	Args      []any     `json:"args" yaml:"args"`
	Rows      int       `json:"rows" yaml:"rows"`
	Exhausted bool      `json:"exhausted" yaml:"exhausted"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
}

// Recorder receives a CallRecord when a call's rows end.
type Recorder interface {
	RecordCall(ctx context.Context, rec CallRecord) error
}

// Catalog is the set of procedures available to callers, addressed by
// qualified name.
//
// Thread-safety: all methods are safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	byName  map[string]*procedure.Handle
	ordered []*procedure.Handle

	allow    []string
	recorder Recorder
	ids      IDGenerator
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithAllow restricts registration to names matching at least one glob
// pattern (path.Match syntax, e.g. "db.people.*"). The default allows all.
func WithAllow(patterns ...string) Option {
	return func(c *Catalog) {
		c.allow = append([]string(nil), patterns...)
	}
}

// WithRecorder sets where finished calls are recorded.
func WithRecorder(r Recorder) Option {
	return func(c *Catalog) {
		c.recorder = r
	}
}

// WithIDGenerator sets the call ID generator. Defaults to UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *Catalog) {
		c.ids = g
	}
}

// WithClock sets the time source for call start times.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// New creates an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		byName: make(map[string]*procedure.Handle),
		allow:  []string{"*"},
		ids:    UUIDv7Generator{},
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register adds handles. Either all of them are added or, if any name is
// a duplicate or not allowed, none are.
func (c *Catalog) Register(handles ...*procedure.Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	batch := make(map[string]bool, len(handles))
	for _, h := range handles {
		name := h.Name()
		switch {
		case c.byName[name] != nil || batch[name]:
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicate, name))
		case !c.allowed(name):
			errs = append(errs, fmt.Errorf("%w: %s", ErrNotAllowed, name))
		}
		batch[name] = true
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	for _, h := range handles {
		c.byName[h.Name()] = h
		c.ordered = append(c.ordered, h)
		c.logger.Debug("procedure registered", "procedure", h.Name())
	}
	return nil
}

func (c *Catalog) allowed(name string) bool {
	for _, pattern := range c.allow {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// Get returns the handle registered under name.
func (c *Catalog) Get(name string) (*procedure.Handle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.byName[name]
	return h, ok
}

// List returns the handles in registration order.
func (c *Catalog) List() []*procedure.Handle {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*procedure.Handle(nil), c.ordered...)
}

// Signatures returns the signatures in registration order.
func (c *Catalog) Signatures() []ir.Signature {
	handles := c.List()
	sigs := make([]ir.Signature, len(handles))
	for i, h := range handles {
		sigs[i] = h.Signature()
	}
	return sigs
}

// Call invokes the named procedure. When a Recorder is configured the call
// is recorded once its rows end, or immediately if the invocation fails.
func (c *Catalog) Call(ctx context.Context, name string, args []any) (*procedure.Rows, error) {
	h, ok := c.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	rec := CallRecord{
		ID:        c.ids.Generate(),
		Procedure: name,
		Args:      append([]any(nil), args...),
		StartedAt: c.now(),
	}
	if rec.Args == nil {
		rec.Args = []any{}
	}

	c.logger.Debug("calling procedure", "procedure", name, "call_id", rec.ID, "args", len(args))

	rows, err := h.Invoke(ctx, args)
	if err != nil {
		rec.Error = err.Error()
		c.record(ctx, rec)
		return nil, err
	}

	rows.OnClose(func(s procedure.RowsSummary) {
		rec.Rows = s.Rows
		rec.Exhausted = s.Exhausted
		if s.Err != nil {
			rec.Error = s.Err.Error()
		}
		c.record(ctx, rec)
	})
	return rows, nil
}

func (c *Catalog) record(ctx context.Context, rec CallRecord) {
	if c.recorder == nil {
		return
	}
	// The call's context may already be cancelled by the time rows close.
	if err := c.recorder.RecordCall(context.WithoutCancel(ctx), rec); err != nil {
		c.logger.Warn("failed to record call",
			"procedure", rec.Procedure,
			"call_id", rec.ID,
			"error", err)
	}
}
