package admin

import (
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

// Collection paths of the administrative resources.
const (
	CollectionUsers        = "/users"
	CollectionRoles        = "/roles"
	CollectionAuthors      = "/authors"
	CollectionCategories   = "/categories"
	CollectionPenalties    = "/penalties"
	CollectionReservations = "/reservations"
	CollectionBooks        = "/books"
)

type User struct {
	ID       core.ID `json:"id,omitempty"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Password string  `json:"password,omitempty"`
}

type Role struct {
	ID          core.ID `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
}

type Author struct {
	ID   core.ID `json:"id,omitempty"`
	Name string  `json:"name"`
	Bio  string  `json:"bio,omitempty"`
}

type Category struct {
	ID          core.ID `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
}

// Penalty is a fine charged for an overdue return.
type Penalty struct {
	ID       core.ID           `json:"id,omitempty"`
	UserID   core.ID           `json:"userId"`
	RecordID core.ID           `json:"recordId"`
	Amount   decimal.Decimal   `json:"amount"`
	Reason   string            `json:"reason,omitempty"`
	Paid     bool              `json:"paid"`
	IssuedOn core.CalendarDate `json:"issuedOn"`
}

// Reservation holds a book for a user until it becomes available.
type Reservation struct {
	ID         core.ID           `json:"id,omitempty"`
	UserID     core.ID           `json:"userId"`
	BookID     core.ID           `json:"bookId"`
	ReservedOn core.CalendarDate `json:"reservedOn"`
	Status     string            `json:"status"`
}
