// Package core contains the functional core of the circulation desk:
// calendar dates, the borrow relation between a user and a book, the shared
// availability predicate, loan-period validation, overdue fine assessment,
// the per-view state union and the pure decisions that drive its transitions.
//
// Nothing in this package performs I/O. The imperative shell (features and
// orchestrator packages) feeds it backend data and acts on its decisions.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
