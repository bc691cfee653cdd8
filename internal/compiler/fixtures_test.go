package compiler

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/proclog"
)

// Person is a single-column record.
type Person struct {
	Name string `proc:"name"`
}

// PersonWithAge is a two-column record.
type PersonWithAge struct {
	Name string `proc:"name"`
	Age  int64  `proc:"age"`
}

// People declares the procedures from the calling-convention scenarios.
type People struct{}

func NewPeople() *People { return &People{} }

func peopleGroup() *procedure.Declaration[People] {
	d := procedure.Declare[People](NewPeople, procedure.Namespace("db.people"))
	procedure.Define(d, "listCoolPeople", func(*People) procedure.Stream[Person] {
		return procedure.Of(Person{"Bonnie"}, Person{"Clyde"})
	})
	procedure.Define(d, "listCoolPeopleWithAge", func(*People) procedure.Stream[PersonWithAge] {
		return procedure.Of(PersonWithAge{"Jake", 18}, PersonWithAge{"Pontus", 2})
	})
	return d
}

// NeedsSelf only has a constructor that takes an instance of itself.
type NeedsSelf struct{}

func NewNeedsSelf(other *NeedsSelf) *NeedsSelf { return &NeedsSelf{} }

func needsSelfGroup() *procedure.Declaration[NeedsSelf] {
	d := procedure.Declare[NeedsSelf](NewNeedsSelf)
	procedure.Define(d, "anything", func(*NeedsSelf) procedure.Stream[Person] {
		return procedure.Empty[Person]()
	})
	return d
}

// Secretive has only a private constructor.
type Secretive struct{}

func newSecretive() *Secretive { return &Secretive{} }

func secretiveGroup(withProcedure bool) *procedure.Declaration[Secretive] {
	d := procedure.Declare[Secretive](newSecretive)
	if withProcedure {
		procedure.Define(d, "hidden", func(*Secretive) procedure.Stream[Person] {
			return procedure.Empty[Person]()
		})
	}
	return d
}

// Logging issues four calls at increasing severity.
type Logging struct {
	Log proclog.Log `proc:"resource"`
}

func NewLogging() *Logging { return &Logging{} }

func loggingGroup() *procedure.Declaration[Logging] {
	d := procedure.Declare[Logging](NewLogging, procedure.Namespace("db.people"))
	procedure.Define(d, "logAround", func(l *Logging) procedure.Stream[Person] {
		l.Log.Debug("1")
		l.Log.Info("2")
		l.Log.Warn("3")
		l.Log.Error("4")
		return procedure.Empty[Person]()
	})
	return d
}

// Counter keeps per-instance state so fresh instances are observable.
type Counter struct {
	calls int
}

func NewCounter() *Counter { return &Counter{} }

type CountRow struct {
	Calls int `proc:"calls"`
}

type RangeArgs struct {
	From int64 `proc:"from"`
	To   int64 `proc:"to"`
}

type Value struct {
	N int64 `proc:"n"`
}

func counterGroup() *procedure.Declaration[Counter] {
	d := procedure.Declare[Counter](NewCounter, procedure.Namespace("test.counter"))
	procedure.Define(d, "bump", func(c *Counter) procedure.Stream[CountRow] {
		c.calls++
		return procedure.Of(CountRow{Calls: c.calls})
	})
	procedure.DefineWithArgs(d, "range", func(_ *Counter, a RangeArgs) procedure.Stream[Value] {
		return func(yield func(Value, error) bool) {
			for n := a.From; n < a.To; n++ {
				if !yield(Value{N: n}, nil) {
					return
				}
			}
		}
	}, procedure.Description("yields from..to-1"))
	return d
}

// Unmappable has one good and one unmappable member.
type Unmappable struct{}

func NewUnmappable() *Unmappable { return &Unmappable{} }

type ChanRecord struct {
	Ch chan int
}

func unmappableGroup() *procedure.Declaration[Unmappable] {
	d := procedure.Declare[Unmappable](NewUnmappable, procedure.Namespace("test.mixed"))
	procedure.Define(d, "good", func(*Unmappable) procedure.Stream[Person] {
		return procedure.Of(Person{"ok"})
	})
	procedure.Define(d, "bad", func(*Unmappable) procedure.Stream[ChanRecord] {
		return procedure.Empty[ChanRecord]()
	})
	procedure.Define(d, "good", func(*Unmappable) procedure.Stream[Person] {
		return procedure.Empty[Person]()
	})
	return d
}

// HiddenResource tags an unexported field.
type HiddenResource struct {
	log proclog.Log `proc:"resource"`
}

func NewHiddenResource() *HiddenResource { return &HiddenResource{} }

func hiddenResourceGroup() *procedure.Declaration[HiddenResource] {
	d := procedure.Declare[HiddenResource](NewHiddenResource)
	procedure.Define(d, "noop", func(h *HiddenResource) procedure.Stream[Person] {
		_ = h.log
		return procedure.Empty[Person]()
	})
	return d
}

// Fallible has a constructor that can fail.
type Fallible struct{}

var errNotReady = errors.New("not ready")

var fallibleReady bool

func NewFallible() (*Fallible, error) {
	if !fallibleReady {
		return nil, errNotReady
	}
	return &Fallible{}, nil
}

func fallibleGroup() *procedure.Declaration[Fallible] {
	d := procedure.Declare[Fallible](NewFallible)
	procedure.Define(d, "ping", func(*Fallible) procedure.Stream[Person] {
		return procedure.Of(Person{"pong"})
	})
	return d
}

// Failing produces a row and then fails.
type Failing struct{}

func NewFailing() *Failing { return &Failing{} }

func failingGroup() *procedure.Declaration[Failing] {
	d := procedure.Declare[Failing](NewFailing, procedure.Namespace("test"))
	procedure.Define(d, "halfway", func(*Failing) procedure.Stream[Person] {
		return func(yield func(Person, error) bool) {
			if !yield(Person{"first"}, nil) {
				return
			}
			yield(Person{}, fmt.Errorf("disk on fire"))
		}
	})
	procedure.Define(d, "explode", func(*Failing) procedure.Stream[Person] {
		panic("body exploded")
	})
	return d
}

// Tagged uses column types that only have registered mappings.
type Tagged struct{}

func NewTagged() *Tagged { return &Tagged{} }

// Level is an int without a text form.
type Level int

type TaggedRecord struct {
	ID  uuid.UUID `proc:"id"`
	Num int       `proc:"num"`
}

type LookupArgs struct {
	ID uuid.UUID `proc:"id"`
}

type LevelRecord struct {
	Level Level `proc:"level"`
}

var taggedID = uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")

func taggedGroup() *procedure.Declaration[Tagged] {
	d := procedure.Declare[Tagged](NewTagged, procedure.Namespace("test.tagged"))
	procedure.Define(d, "ids", func(*Tagged) procedure.Stream[TaggedRecord] {
		return procedure.Of(TaggedRecord{ID: taggedID, Num: 3})
	})
	procedure.DefineWithArgs(d, "lookup", func(_ *Tagged, a LookupArgs) procedure.Stream[TaggedRecord] {
		return procedure.Of(TaggedRecord{ID: a.ID, Num: 1})
	})
	procedure.Define(d, "level", func(*Tagged) procedure.Stream[LevelRecord] {
		return procedure.Of(LevelRecord{Level: 2})
	})
	return d
}
