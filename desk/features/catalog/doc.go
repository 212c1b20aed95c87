// Package catalog lists the library's books page by page, fills in author and
// category names from the reference collections and exports listings as CSV.
//
// Every row carries the same availability predicate the detail view uses
// (core.CanBorrow), evaluated without a per-user borrow status.
package catalog
