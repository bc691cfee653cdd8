package builtin

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procrt/internal/capability"
	"github.com/roach88/procrt/internal/catalog"
	"github.com/roach88/procrt/internal/compiler"
	"github.com/roach88/procrt/internal/ir"
	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/testutil"
	"github.com/roach88/procrt/internal/typemap"
)

func setup(t *testing.T) (*catalog.Catalog, *catalog.MemoryLog) {
	t.Helper()
	reg := capability.NewRegistry()
	log := catalog.NewMemoryLog(10)
	clock := testutil.NewDeterministicClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), time.Second)
	cat := catalog.New(
		catalog.WithRecorder(log),
		catalog.WithIDGenerator(testutil.NewFixedGenerator("c1", "c2", "c3", "c4", "c5")),
		catalog.WithClock(clock.Now),
		catalog.WithLogger(slog.New(slog.DiscardHandler)),
	)
	Provide(reg, cat, log)

	c := compiler.New(typemap.New(), reg, compiler.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, Install(c, cat, slog.New(slog.DiscardHandler)))
	return cat, log
}

func call(t *testing.T, cat *catalog.Catalog, name string, args ...any) []ir.Row {
	t.Helper()
	rows, err := cat.Call(context.Background(), name, args)
	require.NoError(t, err)
	return testutil.Collect(t, rows)
}

func TestProcedures(t *testing.T) {
	cat, _ := setup(t)

	rows := call(t, cat, "dbms.procedures")
	require.Len(t, rows, 2)
	assert.Equal(t, ir.Row{
		"dbms.procedures",
		"dbms.procedures() :: (name :: STRING, signature :: STRING, description :: STRING)",
		"List all procedures in the catalog.",
	}, rows[0])
	assert.Equal(t, "dbms.recentCalls", rows[1][0])
	assert.Equal(t,
		"dbms.recentCalls(limit :: INTEGER) :: (id :: STRING, procedure :: STRING, args :: LIST OF ANY, "+
			"rows :: INTEGER, exhausted :: BOOLEAN, error :: STRING, startedAt :: STRING)",
		rows[1][1])
}

func TestRecentCalls(t *testing.T) {
	cat, _ := setup(t)

	call(t, cat, "dbms.procedures")
	call(t, cat, "dbms.procedures")

	rows := call(t, cat, "dbms.recentCalls", int64(1))
	require.Len(t, rows, 1)
	assert.Equal(t, ir.Row{
		"c2",
		"dbms.procedures",
		[]any{},
		int64(2),
		true,
		"",
		"2024-05-01T12:00:01Z",
	}, rows[0])

	all := call(t, cat, "dbms.recentCalls", int64(0))
	assert.Len(t, all, 3, "includes the previous recentCalls call")
}

func TestRecentCalls_NegativeLimit(t *testing.T) {
	cat, _ := setup(t)

	rows, err := cat.Call(context.Background(), "dbms.recentCalls", []any{int64(-1)})
	require.NoError(t, err)
	_, err = rows.Collect()
	assert.ErrorContains(t, err, "limit must not be negative")
}

// Mixed has compilable members next to one that cannot be typed.
type Mixed struct{}

func NewMixed() *Mixed { return &Mixed{} }

type okRow struct {
	V string `proc:"v"`
}

type chanRow struct {
	C chan int `proc:"c"`
}

// Broken only has a private constructor.
type Broken struct{}

func newBroken() *Broken { return &Broken{} }

func installer(t *testing.T, allow ...string) (*compiler.Compiler, *catalog.Catalog) {
	t.Helper()
	discard := slog.New(slog.DiscardHandler)
	reg := capability.NewRegistry()
	cat := catalog.New(catalog.WithAllow(allow...), catalog.WithLogger(discard))
	Provide(reg, cat, catalog.NewMemoryLog(1))
	return compiler.New(typemap.New(), reg, compiler.WithLogger(discard)), cat
}

func TestInstall_KeepsFailuresLocal(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c, cat := installer(t, "dbms.*", "test.mixed.*", "test.broken.*")

	mixed := procedure.Declare[Mixed](NewMixed, procedure.Namespace("test.mixed"))
	procedure.Define(mixed, "good", func(*Mixed) procedure.Stream[okRow] {
		return procedure.Of(okRow{"ok"})
	})
	procedure.Define(mixed, "bad", func(*Mixed) procedure.Stream[chanRow] {
		return procedure.Empty[chanRow]()
	})
	procedure.Define(mixed, "alsoGood", func(*Mixed) procedure.Stream[okRow] {
		return procedure.Empty[okRow]()
	})

	broken := procedure.Declare[Broken](newBroken, procedure.Namespace("test.broken"))
	procedure.Define(broken, "never", func(*Broken) procedure.Stream[okRow] {
		return procedure.Empty[okRow]()
	})

	hidden := procedure.Declare[Mixed](NewMixed, procedure.Namespace("test.hidden"))
	procedure.Define(hidden, "secret", func(*Mixed) procedure.Stream[okRow] {
		return procedure.Empty[okRow]()
	})

	require.NoError(t, Install(c, cat, logger, broken, mixed, hidden))

	names := []string{}
	for _, h := range cat.List() {
		names = append(names, h.Name())
	}
	assert.Equal(t, []string{"dbms.procedures", "dbms.recentCalls", "test.mixed.good", "test.mixed.alsoGood"}, names)
	assert.Equal(t, []ir.Row{{"ok"}}, call(t, cat, "test.mixed.good"))

	out := buf.String()
	assert.Contains(t, out, `msg="group skipped" group=Broken`)
	assert.Contains(t, out, `msg="group partially compiled" group=Mixed compiled=2`)
	assert.Contains(t, out, `msg="procedure not allowed" procedure=test.hidden.secret`)
}

func TestInstall_DuplicateNameFails(t *testing.T) {
	c, cat := installer(t, "*")

	clash := procedure.Declare[Mixed](NewMixed, procedure.Namespace("dbms"))
	procedure.Define(clash, "procedures", func(*Mixed) procedure.Stream[okRow] {
		return procedure.Empty[okRow]()
	})

	err := Install(c, cat, slog.New(slog.DiscardHandler), clash)
	assert.ErrorIs(t, err, catalog.ErrDuplicate)
	assert.Contains(t, err.Error(), "install Mixed")
}
