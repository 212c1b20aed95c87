package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/gateway"
)

const passwordKey = "password"

// Store implements gateway.Circulation and gateway.Directory in memory.
type Store struct {
	mu           sync.Mutex
	books        map[core.ID]core.BookSummary
	records      map[core.ID]core.BorrowRecord
	recordOrder  []core.ID
	collections  map[string]map[core.ID]gateway.Document
	accounts     map[string]gateway.Account
	newID        func() core.ID
	passwordCost int
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the uuid generator for new books, records and documents.
func WithIDGenerator(newID func() core.ID) Option {
	return func(s *Store) {
		s.newID = newID
	}
}

// WithPasswordCost sets the bcrypt cost for user passwords. Tests use bcrypt.MinCost.
func WithPasswordCost(cost int) Option {
	return func(s *Store) {
		s.passwordCost = cost
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		books:       make(map[core.ID]core.BookSummary),
		records:     make(map[core.ID]core.BorrowRecord),
		collections: make(map[string]map[core.ID]gateway.Document),
		accounts:    make(map[string]gateway.Account),
		newID:       func() core.ID { return core.ID(uuid.NewString()) },
	}

	for _, collection := range gateway.DirectoryCollections {
		s.collections[collection] = make(map[core.ID]gateway.Document)
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

/*** Circulation ***/

// BorrowStatus returns the active record if there is one, else the most recent returned one.
func (s *Store) BorrowStatus(_ context.Context, userID, bookID core.ID) (core.BorrowRelation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.activeRecord(userID, bookID); ok {
		return record.Relation(), nil
	}

	for i := len(s.recordOrder) - 1; i >= 0; i-- {
		record := s.records[s.recordOrder[i]]
		if record.UserID == userID && record.BookID == bookID {
			return record.Relation(), nil
		}
	}

	return core.NoRelation(), nil
}

func (s *Store) AddBorrowRecord(_ context.Context, req gateway.BorrowRequest) (core.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[req.BookID]
	if !ok {
		return core.BorrowRecord{}, fmt.Errorf("book %s: %w", req.BookID, gateway.ErrNotFound)
	}

	if _, active := s.activeRecord(req.UserID, req.BookID); active {
		return core.BorrowRecord{}, gateway.ErrAlreadyBorrowed
	}

	if book.AvailableCopies < 1 {
		return core.BorrowRecord{}, gateway.ErrNoCopiesAvailable
	}

	record := core.BorrowRecord{
		ID:         s.newID(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: req.BorrowDate,
		DueDate:    req.DueDate,
		Status:     core.BorrowStatusBorrowed,
	}

	book.AvailableCopies--
	s.books[book.ID] = book
	s.records[record.ID] = record
	s.recordOrder = append(s.recordOrder, record.ID)

	return record, nil
}

func (s *Store) BorrowRecord(_ context.Context, recordID core.ID) (core.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[recordID]
	if !ok {
		return core.BorrowRecord{}, gateway.ErrRecordNotFound
	}

	return record, nil
}

func (s *Store) ReturnBorrowRecord(_ context.Context, req gateway.ReturnRequest) (core.BorrowRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[req.RecordID]
	if !ok {
		return core.BorrowRecord{}, gateway.ErrRecordNotFound
	}

	if record.UserID != req.UserID || record.BookID != req.BookID {
		return core.BorrowRecord{}, gateway.ErrRecordMismatch
	}

	if !record.Relation().IsBorrowed() {
		return core.BorrowRecord{}, gateway.ErrRecordNotActive
	}

	returnDate := req.ReturnDate
	record.ReturnDate = &returnDate
	record.Status = core.BorrowStatusReturned
	s.records[record.ID] = record

	if book, exists := s.books[record.BookID]; exists {
		book.AvailableCopies = min(book.AvailableCopies+1, book.TotalCopies)
		s.books[book.ID] = book
	}

	return record, nil
}

// ListBooks orders by title, then id.
func (s *Store) ListBooks(_ context.Context, filter gateway.BookFilter) (gateway.BookPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]core.BookSummary, 0, len(s.books))
	for _, book := range s.books {
		if filter.Matches(book) {
			matched = append(matched, book)
		}
	}

	slices.SortFunc(matched, func(a, b core.BookSummary) int {
		if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
			return c
		}

		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return gateway.BookPage{
		Items:    paginate(matched, filter.Page),
		Total:    len(matched),
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

func (s *Store) Book(_ context.Context, bookID core.ID) (core.BookSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[bookID]
	if !ok {
		return core.BookSummary{}, fmt.Errorf("book %s: %w", bookID, gateway.ErrNotFound)
	}

	return book, nil
}

// SaveBook creates the book when its id is empty and replaces it otherwise.
func (s *Store) SaveBook(_ context.Context, book core.BookSummary) (core.BookSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.ID.IsZero() {
		book.ID = s.newID()
	}
	s.books[book.ID] = book

	return book, nil
}

func (s *Store) DeleteBook(_ context.Context, bookID core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.books[bookID]; !ok {
		return fmt.Errorf("book %s: %w", bookID, gateway.ErrNotFound)
	}
	delete(s.books, bookID)

	return nil
}

// activeRecord must be called with s.mu held.
func (s *Store) activeRecord(userID, bookID core.ID) (core.BorrowRecord, bool) {
	for _, record := range s.records {
		if record.UserID == userID && record.BookID == bookID && record.Relation().IsBorrowed() {
			return record, true
		}
	}

	return core.BorrowRecord{}, false
}

/*** Directory ***/

// List matches every filter as a case-insensitive substring of the document's field and orders by id.
func (s *Store) List(_ context.Context, collection string, page gateway.Page, filters map[string]string) (gateway.DocumentPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return gateway.DocumentPage{}, gateway.ErrUnknownCollection
	}

	matched := make([]gateway.Document, 0, len(docs))
	for _, doc := range docs {
		if matchesFilters(doc, filters) {
			matched = append(matched, maps.Clone(doc))
		}
	}

	slices.SortFunc(matched, func(a, b gateway.Document) int {
		return strings.Compare(a.ID().String(), b.ID().String())
	})

	return gateway.DocumentPage{
		Items:    paginate(matched, page),
		Total:    len(matched),
		Page:     page.Number,
		PageSize: page.Size,
	}, nil
}

func (s *Store) Get(_ context.Context, collection string, id core.ID) (gateway.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, gateway.ErrUnknownCollection
	}

	doc, ok := docs[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", collection, id, gateway.ErrNotFound)
	}

	return maps.Clone(doc), nil
}

func (s *Store) Create(_ context.Context, collection string, doc gateway.Document) (gateway.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, gateway.ErrUnknownCollection
	}

	stored := maps.Clone(doc)
	id := stored.ID()
	if id.IsZero() {
		id = s.newID()
	}
	stored["id"] = id.String()

	if collection == gateway.CollectionUsers {
		if err := s.storeAccount(nil, stored); err != nil {
			return nil, err
		}
	}

	docs[id] = stored

	return maps.Clone(stored), nil
}

// Update merges doc into the stored document. The id cannot change.
func (s *Store) Update(_ context.Context, collection string, id core.ID, doc gateway.Document) (gateway.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return nil, gateway.ErrUnknownCollection
	}

	previous, ok := docs[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", collection, id, gateway.ErrNotFound)
	}

	stored := maps.Clone(previous)
	maps.Copy(stored, doc)
	stored["id"] = id.String()

	if collection == gateway.CollectionUsers {
		if err := s.storeAccount(previous, stored); err != nil {
			return nil, err
		}
	}

	docs[id] = stored

	return maps.Clone(stored), nil
}

func (s *Store) Delete(_ context.Context, collection string, id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, ok := s.collections[collection]
	if !ok {
		return gateway.ErrUnknownCollection
	}

	doc, ok := docs[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", collection, id, gateway.ErrNotFound)
	}

	if collection == gateway.CollectionUsers {
		delete(s.accounts, emailKey(stringField(doc, "email")))
	}
	delete(docs, id)

	return nil
}

func (s *Store) AccountByEmail(_ context.Context, email string) (gateway.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[emailKey(email)]
	if !ok {
		return gateway.Account{}, fmt.Errorf("account %s: %w", email, gateway.ErrNotFound)
	}

	return account, nil
}

// storeAccount keeps the login account in sync with a user document and strips its password.
// previous is nil on create. Must be called with s.mu held.
func (s *Store) storeAccount(previous, user gateway.Document) error {
	email := emailKey(stringField(user, "email"))
	password := stringField(user, passwordKey)
	delete(user, passwordKey)

	if existing, taken := s.accounts[email]; taken && existing.ID != user.ID() {
		return gateway.ErrDuplicateEmail
	}

	var account gateway.Account
	if previous != nil {
		previousEmail := emailKey(stringField(previous, "email"))
		account = s.accounts[previousEmail]

		if previousEmail != email {
			delete(s.accounts, previousEmail)
		}
	}

	if password != "" {
		hash, err := gateway.HashPassword(password, s.passwordCost)
		if err != nil {
			return err
		}
		account.PasswordHash = hash
	}

	account.ID = user.ID()
	account.Name = stringField(user, "name")
	account.Email = stringField(user, "email")
	account.Role = stringField(user, "role")

	if email != "" {
		s.accounts[email] = account
	}

	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func stringField(doc gateway.Document, key string) string {
	value, _ := doc[key].(string)
	return value
}

func matchesFilters(doc gateway.Document, filters map[string]string) bool {
	for key, want := range filters {
		got, ok := doc[key]
		if !ok {
			return false
		}

		if !strings.Contains(strings.ToLower(fmt.Sprint(got)), strings.ToLower(want)) {
			return false
		}
	}

	return true
}

func paginate[T any](items []T, page gateway.Page) []T {
	if page.Size < 1 {
		return items
	}

	start := page.Offset()
	if start >= len(items) || start < 0 {
		return []T{}
	}

	return items[start:min(start+page.Size, len(items))]
}

var (
	_ gateway.Circulation = (*Store)(nil)
	_ gateway.Directory   = (*Store)(nil)
)
