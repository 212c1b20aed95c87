// Package resolvestatus asks the backend how the current user relates to a book.
//
// The QueryHandler surfaces every failure. The Resolver wraps it for the detail
// view and never fails: errors are logged and degrade to "no relation".
package resolvestatus
