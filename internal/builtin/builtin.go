// Package builtin declares the dbms.* procedures. They are compiled and
// called exactly like extension procedures; their dependencies arrive as
// injected resources.
package builtin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/compiler"
	"github.com/roach88/procrt/internal/procedure"
)

// Listing serves dbms.procedures.
type Listing struct {
	Catalog *catalog.Catalog `proc:"resource"`
}

// NewListing is the Listing constructor.
func NewListing() *Listing { return &Listing{} }

// ProcedureInfo is one row of dbms.procedures.
type ProcedureInfo struct {
	Name        string `proc:"name"`
	Signature   string `proc:"signature"`
	Description string `proc:"description"`
}

// RecentCalls reads the call log, newest first, on behalf of the current
// invocation. It is bound to the invocation's context when resolved.
type RecentCalls func(limit int) ([]catalog.CallRecord, error)

// History serves dbms.recentCalls.
type History struct {
	Calls RecentCalls `proc:"resource"`
}

// NewHistory is the History constructor.
func NewHistory() *History { return &History{} }

// RecentCallsArgs are the arguments of dbms.recentCalls.
type RecentCallsArgs struct {
	Limit int64 `proc:"limit"`
}

// CallInfo is one row of dbms.recentCalls.
type CallInfo struct {
	ID        string `proc:"id"`
	Procedure string `proc:"procedure"`
	Args      []any  `proc:"args"`
	Rows      int64  `proc:"rows"`
	Exhausted bool   `proc:"exhausted"`
	Error     string `proc:"error"`
	StartedAt string `proc:"startedAt"`
}

// Groups returns the builtin declaration groups.
func Groups() []procedure.Group {
	listing := procedure.Declare[Listing](NewListing, procedure.Namespace("dbms"))
	procedure.Define(listing, "procedures", (*Listing).procedures,
		procedure.Description("List all procedures in the catalog."))

	history := procedure.Declare[History](NewHistory, procedure.Namespace("dbms"))
	procedure.DefineWithArgs(history, "recentCalls", (*History).recentCalls,
		procedure.Description("List the most recent procedure calls, newest first. A limit of 0 lists all retained calls."))

	return []procedure.Group{listing, history}
}

func (l *Listing) procedures() procedure.Stream[ProcedureInfo] {
	return func(yield func(ProcedureInfo, error) bool) {
		for _, h := range l.Catalog.List() {
			info := ProcedureInfo{
				Name:        h.Name(),
				Signature:   h.Signature().String(),
				Description: h.Description(),
			}
			if !yield(info, nil) {
				return
			}
		}
	}
}

func (h *History) recentCalls(args RecentCallsArgs) procedure.Stream[CallInfo] {
	return func(yield func(CallInfo, error) bool) {
		if args.Limit < 0 {
			yield(CallInfo{}, errors.New("limit must not be negative"))
			return
		}
		// Reading happens on first pull so an unused result costs nothing.
		calls, err := h.Calls(int(args.Limit))
		if err != nil {
			yield(CallInfo{}, err)
			return
		}
		for _, c := range calls {
			info := CallInfo{
				ID:        c.ID,
				Procedure: c.Procedure,
				Args:      c.Args,
				Rows:      int64(c.Rows),
				Exhausted: c.Exhausted,
				Error:     c.Error,
				StartedAt: c.StartedAt.UTC().Format(time.RFC3339Nano),
			}
			if !yield(info, nil) {
				return
			}
		}
	}
}

// Provide installs the resources the builtin procedures depend on.
func Provide(reg *capability.Registry, cat *catalog.Catalog, calls catalog.CallLog) {
	capability.Instance(reg, cat)
	capability.Provide(reg, func(ctx context.Context) (RecentCalls, error) {
		return func(limit int) ([]catalog.CallRecord, error) {
			return calls.ReadCalls(ctx, limit)
		}, nil
	})
}

// Install compiles the builtin groups followed by extra and adds every
// handle to cat.
//
// A failure stays with the unit that caused it: a group-level compile
// error skips that group, a member-level error skips that member, and a
// name the allowlist rejects is skipped. All of these are logged. Install
// fails only when the catalog rejects a handle for another reason, such as
// a duplicate name.
func Install(c *compiler.Compiler, cat *catalog.Catalog, logger *slog.Logger, extra ...procedure.Group) error {
	for _, g := range append(Groups(), extra...) {
		group := g.Type().Name()
		handles, err := c.Compile(g)
		switch {
		case compiler.IsGroupError(err):
			logger.Error("group skipped", "group", group, "error", err)
			continue
		case err != nil:
			logger.Warn("group partially compiled", "group", group, "compiled", len(handles), "error", err)
		}

		for _, h := range handles {
			err := cat.Register(h)
			if errors.Is(err, catalog.ErrNotAllowed) {
				logger.Debug("procedure not allowed", "procedure", h.Name())
				continue
			}
			if err != nil {
				return fmt.Errorf("install %s: %w", group, err)
			}
		}
	}
	return nil
}
