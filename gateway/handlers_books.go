package gateway

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request, _ Claims) {
	query := r.URL.Query()

	page, err := s.circulation.ListBooks(r.Context(), BookFilter{
		Page:     parsePage(query.Get("page"), query.Get("pageSize")),
		Search:   strings.TrimSpace(query.Get("search")),
		Category: core.ID(query.Get("category")),
		Author:   core.ID(query.Get("author")),
	})
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusOK, msgOK, page)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request, _ Claims) {
	book, err := s.circulation.Book(r.Context(), core.ID(r.PathValue("id")))
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusOK, msgOK, book)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request, _ Claims) {
	book, ok := decodeBook(w, r)
	if !ok {
		return
	}
	book.ID = ""

	saved, err := s.circulation.SaveBook(r.Context(), book)
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, msgCreated, saved)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request, _ Claims) {
	book, ok := decodeBook(w, r)
	if !ok {
		return
	}
	book.ID = core.ID(r.PathValue("id"))

	if _, err := s.circulation.Book(r.Context(), book.ID); err != nil {
		s.storeFailed(w, r, err)
		return
	}

	saved, err := s.circulation.SaveBook(r.Context(), book)
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusOK, msgOK, saved)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request, _ Claims) {
	if err := s.circulation.DeleteBook(r.Context(), core.ID(r.PathValue("id"))); err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusOK, msgDeleted, nil)
}

func decodeBook(w http.ResponseWriter, r *http.Request) (core.BookSummary, bool) {
	var book core.BookSummary
	if err := decodeBody(r, &book); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return core.BookSummary{}, false
	}

	var fieldErrors fieldErrorList
	if strings.TrimSpace(book.Title) == "" {
		fieldErrors.add("title is required", "title")
	}

	if book.TotalCopies < 0 {
		fieldErrors.add("totalCopies must not be negative", "totalCopies")
	}

	if book.AvailableCopies < 0 || book.AvailableCopies > book.TotalCopies {
		fieldErrors.add("availableCopies must be between 0 and totalCopies", "availableCopies")
	}

	if book.PointValue.IsNegative() {
		fieldErrors.add("pointValue must not be negative", "pointValue")
	}

	if fieldErrors.write(w) {
		return core.BookSummary{}, false
	}

	// derived columns are never stored
	book.AuthorName = ""
	book.CategoryName = ""

	return book, true
}

// parsePage reads 1-based page parameters, falling back to page 1 of 20 and capping the size.
func parsePage(rawPage, rawSize string) Page {
	page := Page{Number: 1, Size: defaultPageSize}

	if n, err := strconv.Atoi(rawPage); err == nil && n > 0 {
		page.Number = n
	}

	if n, err := strconv.Atoi(rawSize); err == nil && n > 0 {
		page.Size = min(n, maxPageSize)
	}

	return page
}
