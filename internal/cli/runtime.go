package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/roach88/procrt/internal/builtin"
	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/compiler"
	"github.com/roach88/procrt/internal/config"
	"github.com/roach88/procrt/internal/demo"
	"github.com/roach88/procrt/internal/proclog"
	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/store"
	"github.com/roach88/procrt/internal/typemap"
)

// extensionGroups lists the declaration groups the CLI serves next to the
// builtins.
var extensionGroups = func() []procedure.Group {
	return []procedure.Group{demo.Group()}
}

// runtime is everything one command invocation needs: the loaded
// configuration, a populated catalog, and where calls are recorded.
type runtime struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Catalog
	store   *store.Store // nil without store.path
	calls   catalog.CallLog
}

// openRuntime loads configuration, compiles the builtin and demo groups
// and registers every allowed procedure. Diagnostics go to errOut.
func openRuntime(ctx context.Context, opts *RootOptions, errOut io.Writer) (*runtime, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	rt := &runtime{
		cfg:    cfg,
		logger: newLogger(errOut, cfg.Log, opts.Verbose),
	}

	var recorder catalog.Recorder
	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open store", err)
		}
		rt.store = st
		recorder, rt.calls = st, st
	} else {
		mem := catalog.NewMemoryLog(cfg.Procedures.RetainCalls)
		recorder, rt.calls = mem, mem
	}

	rt.catalog = catalog.New(
		catalog.WithAllow(cfg.Procedures.Allow...),
		catalog.WithRecorder(recorder),
		catalog.WithLogger(rt.logger),
	)

	reg := capability.NewRegistry()
	proclog.Register(reg)
	builtin.Provide(reg, rt.catalog, rt.calls)

	comp := compiler.New(typemap.New(), reg, compiler.WithLogger(rt.logger))
	if err := builtin.Install(comp, rt.catalog, rt.logger, extensionGroups()...); err != nil {
		rt.Close()
		return nil, WrapExitError(ExitCommandError, "failed to build catalog", err)
	}

	if rt.store != nil {
		changed, err := rt.store.SaveCatalog(ctx, rt.catalog.Signatures())
		if err != nil {
			rt.Close()
			return nil, WrapExitError(ExitCommandError, "failed to save catalog", err)
		}
		rt.logger.Debug("catalog saved", "path", cfg.Store.Path, "changed", len(changed))
	}

	return rt, nil
}

// withLogger returns ctx carrying the runtime's logger, so procedures with
// an injected Log write through the CLI's handler.
func (rt *runtime) withLogger(ctx context.Context) context.Context {
	return proclog.WithLogger(ctx, rt.logger)
}

// Close releases the store, if any.
func (rt *runtime) Close() error {
	if rt.store == nil {
		return nil
	}
	if err := rt.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}

// newLogger builds the CLI's slog.Logger: charmbracelet/log for text,
// slog's JSON handler for json. verbose forces debug level.
func newLogger(w io.Writer, cfg config.LogConfig, verbose bool) *slog.Logger {
	level := cfg.Level
	if verbose {
		level = "debug"
	}

	if cfg.Format == "json" {
		var l slog.Level
		if err := l.UnmarshalText([]byte(level)); err != nil {
			l = slog.LevelInfo
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
	}

	l, err := log.ParseLevel(level)
	if err != nil {
		l = log.InfoLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:  l,
		Prefix: "procrt",
	}))
}
