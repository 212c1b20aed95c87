// Package memstore keeps the gateway's books, borrow records and directory collections in
// process memory. A single mutex serializes every operation.
package memstore
