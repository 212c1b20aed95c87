// Package testdoubles provides spies for the logger, metrics and tracing interfaces
// so tests can assert on emitted observability data without a real backend.
package testdoubles
