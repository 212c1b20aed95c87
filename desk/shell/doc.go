// Package shell holds the contracts shared by the circulation desk feature slices:
// command and query interfaces, the backend ports they talk through, the
// HandlerResult of mutating commands and the observability helpers used by the
// observable wrappers.
//
// This package implements the "imperative shell" around the functional core in
// desk/core. Feature handlers perform the backend round-trips; all decisions stay
// in the core.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
