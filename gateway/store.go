package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

var (
	// ErrNotFound is returned when a book, record or document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCopiesAvailable is returned when a borrow is attempted for a book without available copies.
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrAlreadyBorrowed is returned when the user already has an active record for the book.
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")

	// ErrRecordNotActive is returned when a record that is not borrowed is returned.
	ErrRecordNotActive = errors.New("borrow record is not active")

	// ErrRecordMismatch is returned when a record does not belong to the given user and book.
	ErrRecordMismatch = errors.New("borrow record does not match user and book")

	// ErrUnknownCollection is returned for a directory collection the store does not keep.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrDuplicateEmail is returned when a user is created with an email that is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Directory collections served generically.
const (
	CollectionUsers        = "users"
	CollectionRoles        = "roles"
	CollectionAuthors      = "authors"
	CollectionCategories   = "categories"
	CollectionPenalties    = "penalties"
	CollectionReservations = "reservations"
)

// DirectoryCollections lists every collection a Directory serves.
var DirectoryCollections = []string{
	CollectionUsers,
	CollectionRoles,
	CollectionAuthors,
	CollectionCategories,
	CollectionPenalties,
	CollectionReservations,
}

// Roles known to the gateway.
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleMember    = "member"
)

// CanManage reports whether role may mutate collections and act for other users.
func CanManage(role string) bool {
	switch strings.ToLower(role) {
	case RoleAdmin, RoleLibrarian:
		return true
	default:
		return false
	}
}

// BorrowRequest creates an active borrow record.
type BorrowRequest struct {
	UserID     core.ID
	BookID     core.ID
	BorrowDate core.CalendarDate
	DueDate    core.CalendarDate
}

// ReturnRequest closes an active borrow record.
type ReturnRequest struct {
	UserID     core.ID
	BookID     core.ID
	RecordID   core.ID
	ReturnDate core.CalendarDate
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Offset returns the number of items before the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// BookFilter narrows the book listing. Search matches title or ISBN case-insensitively,
// Category and Author match ids exactly.
type BookFilter struct {
	Page     Page
	Search   string
	Category core.ID
	Author   core.ID
}

// Matches reports whether book passes the filter, ignoring pagination.
func (f BookFilter) Matches(book core.BookSummary) bool {
	if f.Category != "" && book.CategoryID != f.Category {
		return false
	}

	if f.Author != "" && book.AuthorID != f.Author {
		return false
	}

	if f.Search == "" {
		return true
	}

	needle := strings.ToLower(f.Search)

	return strings.Contains(strings.ToLower(book.Title), needle) || strings.Contains(strings.ToLower(book.ISBN), needle)
}

// BookPage is one page of the book listing.
type BookPage struct {
	Items    []core.BookSummary `json:"items"`
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
}

// Circulation owns books and borrow records. Implementations must apply borrow and return
// atomically together with the availability change of the book.
type Circulation interface {
	BorrowStatus(ctx context.Context, userID, bookID core.ID) (core.BorrowRelation, error)
	AddBorrowRecord(ctx context.Context, req BorrowRequest) (core.BorrowRecord, error)
	BorrowRecord(ctx context.Context, recordID core.ID) (core.BorrowRecord, error)
	ReturnBorrowRecord(ctx context.Context, req ReturnRequest) (core.BorrowRecord, error)

	ListBooks(ctx context.Context, filter BookFilter) (BookPage, error)
	Book(ctx context.Context, bookID core.ID) (core.BookSummary, error)
	SaveBook(ctx context.Context, book core.BookSummary) (core.BookSummary, error)
	DeleteBook(ctx context.Context, bookID core.ID) error
}

// Document is a schemaless directory item. The "id" key holds its identifier.
type Document map[string]any

// ID returns the document's identifier.
func (d Document) ID() core.ID {
	switch id := d["id"].(type) {
	case string:
		return core.ID(id)
	case core.ID:
		return id
	default:
		return ""
	}
}

// Account is a user who can log in.
type Account struct {
	ID           core.ID
	Name         string
	Email        string
	Role         string
	PasswordHash []byte
}

// DocumentPage is one page of a directory collection.
type DocumentPage struct {
	Items    []Document `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
}

// Directory owns the administrative collections and the login accounts.
// Creating or updating a user with a "password" key stores its bcrypt hash and drops the key.
type Directory interface {
	List(ctx context.Context, collection string, page Page, filters map[string]string) (DocumentPage, error)
	Get(ctx context.Context, collection string, id core.ID) (Document, error)
	Create(ctx context.Context, collection string, doc Document) (Document, error)
	Update(ctx context.Context, collection string, id core.ID, doc Document) (Document, error)
	Delete(ctx context.Context, collection string, id core.ID) error

	AccountByEmail(ctx context.Context, email string) (Account, error)
}
