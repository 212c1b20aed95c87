// Package gateway is a reference implementation of the library backend the desk client talks to.
//
// It serves the JSON envelope contract over net/http: login with bearer JWTs, borrow status
// lookups, borrow and return of book copies, and the administrative collections.
// Persistent state lives behind the Circulation and Directory interfaces, implemented by
// gateway/memstore and gateway/postgresstore.
package gateway
