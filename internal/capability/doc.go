// Package capability resolves shared services (capabilities) for procedure
// invocations.
//
// A capability is identified by a marker: the reflect.Type of the service,
// usually an interface such as proclog.Log. Host initialization code
// registers one Provider per marker; every invocation resolves a fresh
// value by calling the provider with the invocation's context.
//
// Registration is expected to complete before resolution starts, but
// re-registration is allowed at any time and the last write wins, which
// lets tests substitute providers. Resolution is safe for concurrent use.
package capability
