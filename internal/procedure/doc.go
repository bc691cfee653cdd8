// Package procedure defines how extension authors declare procedures and
// how the query engine calls them once compiled.
//
// Authors describe a declaration group with an explicit descriptor:
//
//	type People struct {
//		Log proclog.Log `proc:"resource"`
//	}
//
//	func NewPeople() *People { return &People{} }
//
//	func Declaration() *procedure.Declaration[People] {
//		d := procedure.Declare[People](NewPeople, procedure.Namespace("db.people"))
//		procedure.Define(d, "listCoolPeople", func(p *People) procedure.Stream[Person] {
//			return procedure.Of(Person{"Bonnie"}, Person{"Clyde"})
//		})
//		return d
//	}
//
// Definition order is declaration order. Fields tagged `proc:"resource"`
// are injectable: each invocation builds a fresh group instance with the
// constructor and resolves those fields from the capability registry.
//
// The compiler (package compiler) turns a Group into Handles. A Handle
// validates positional arguments against its Signature and returns Rows, a
// pull-based single-pass sequence that never reads more than one record
// ahead of the consumer.
package procedure
