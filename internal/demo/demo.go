// Package demo declares a small set of example procedures. The CLI
// registers them so there is something to list and call out of the box.
package demo

import (
	"fmt"

	"github.com/roach88/procrt/internal/procedure"
	"github.com/roach88/procrt/internal/proclog"
)

// Person is a single-column record.
type Person struct {
	Name string `proc:"name"`
}

// BananaOwner is a two-column record.
type BananaOwner struct {
	Name    string `proc:"name"`
	Bananas int64  `proc:"bananas"`
}

// Greeting is the record produced by greet.
type Greeting struct {
	Greeting string `proc:"greeting"`
}

// GreetArgs are the arguments of greet.
type GreetArgs struct {
	Name string `proc:"name"`
}

// People declares the people procedures.
type People struct {
	Log proclog.Log `proc:"resource"`
}

// NewPeople is the People constructor.
func NewPeople() *People { return &People{} }

func (p *People) listCoolPeople() procedure.Stream[Person] {
	return procedure.Of(Person{"Bonnie"}, Person{"Clyde"})
}

func (p *People) listBananaOwningPeople() procedure.Stream[BananaOwner] {
	return procedure.Of(BananaOwner{"Jake", 18}, BananaOwner{"Pontus", 2})
}

func (p *People) logAround() procedure.Stream[Person] {
	p.Log.Debug("1")
	p.Log.Info("2")
	p.Log.Warn("3")
	p.Log.Error("4")
	return procedure.Empty[Person]()
}

func (p *People) greet(args GreetArgs) procedure.Stream[Greeting] {
	if args.Name == "" {
		return procedure.Fail[Greeting](fmt.Errorf("name must not be empty"))
	}
	return procedure.Of(Greeting{"Hello, " + args.Name + "!"})
}

// Group returns the people declaration group.
func Group() *procedure.Declaration[People] {
	d := procedure.Declare[People](NewPeople, procedure.Namespace("db.people"))
	procedure.Define(d, "listCoolPeople", (*People).listCoolPeople,
		procedure.Description("The coolest people around."))
	procedure.Define(d, "listBananaOwningPeople", (*People).listBananaOwningPeople,
		procedure.Description("People and how many bananas they own."))
	procedure.Define(d, "logAround", (*People).logAround,
		procedure.Description("Logs one message at each level and returns nothing."))
	procedure.DefineWithArgs(d, "greet", (*People).greet,
		procedure.Description("Greets someone by name."))
	return d
}
