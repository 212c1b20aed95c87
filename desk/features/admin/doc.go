// Package admin provides the generic administrative CRUD contract over the backend's
// collections (users, roles, authors, categories, penalties, reservations, books).
//
// Mutations are gated on the session role before any request is made; reads are open
// to every authenticated user.
package admin
