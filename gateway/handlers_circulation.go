package gateway

import (
	"errors"
	"net/http"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const logMsgStoreFailed = "store operation failed"

type borrowStatusRequest struct {
	UserID core.ID `json:"userId"`
	BookID core.ID `json:"bookId"`
}

// borrowStatusResponse encodes the absent relation as {"status":null,"recordId":null}.
type borrowStatusResponse struct {
	Status   *core.BorrowStatus `json:"status"`
	RecordID *core.ID           `json:"recordId"`
}

type addBorrowRecordRequest struct {
	UserID     core.ID `json:"userId"`
	BookID     core.ID `json:"bookId"`
	BorrowDate string  `json:"borrowDate"`
	DueDate    string  `json:"dueDate"`
	Status     string  `json:"status"`
}

type returnBorrowRecordRequest struct {
	UserID     core.ID `json:"userId"`
	BookID     core.ID `json:"bookId"`
	RecordID   core.ID `json:"recordId"`
	ReturnDate string  `json:"returnDate"`
	Status     string  `json:"status"`
}

func (s *Server) handleBorrowStatus(w http.ResponseWriter, r *http.Request, claims Claims) {
	var req borrowStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return
	}

	var fieldErrors fieldErrorList
	fieldErrors.requireID(req.UserID, "userId")
	fieldErrors.requireID(req.BookID, "bookId")
	if fieldErrors.write(w) {
		return
	}

	if !mayActFor(claims, req.UserID.String()) {
		writeAccessDenied(w)
		return
	}

	relation, err := s.circulation.BorrowStatus(r.Context(), req.UserID, req.BookID)
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	var resp borrowStatusResponse
	if relation.Status != core.BorrowStatusNone {
		resp.Status = &relation.Status
	}

	if relation.HasRecord() {
		resp.RecordID = &relation.RecordID
	}

	writeData(w, http.StatusOK, msgOK, resp)
}

func (s *Server) handleAddBorrowRecord(w http.ResponseWriter, r *http.Request, claims Claims) {
	var req addBorrowRecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return
	}

	var fieldErrors fieldErrorList
	fieldErrors.requireID(req.UserID, "userId")
	fieldErrors.requireID(req.BookID, "bookId")
	borrowDate := fieldErrors.requireDate(req.BorrowDate, "borrowDate")
	dueDate := fieldErrors.requireDate(req.DueDate, "dueDate")

	if !borrowDate.IsZero() && !dueDate.IsZero() && errors.Is(core.ValidateLoanPeriod(borrowDate, dueDate), core.ErrDueDateNotAfterBorrowDate) {
		fieldErrors.add("dueDate must be after borrowDate", "dueDate")
	}

	if req.Status != "" && req.Status != string(core.BorrowStatusBorrowed) {
		fieldErrors.add("status must be borrowed", "status")
	}

	if fieldErrors.write(w) {
		return
	}

	if !mayActFor(claims, req.UserID.String()) {
		writeAccessDenied(w)
		return
	}

	record, err := s.circulation.AddBorrowRecord(r.Context(), BorrowRequest{
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, msgCreated, record)
}

func (s *Server) handleReturnBorrowRecord(w http.ResponseWriter, r *http.Request, claims Claims) {
	var req returnBorrowRecordRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return
	}

	var fieldErrors fieldErrorList
	fieldErrors.requireID(req.UserID, "userId")
	fieldErrors.requireID(req.BookID, "bookId")
	fieldErrors.requireID(req.RecordID, "recordId")
	returnDate := fieldErrors.requireDate(req.ReturnDate, "returnDate")

	if req.Status != "" && req.Status != string(core.BorrowStatusReturned) {
		fieldErrors.add("status must be returned", "status")
	}

	if fieldErrors.write(w) {
		return
	}

	if !mayActFor(claims, req.UserID.String()) {
		writeAccessDenied(w)
		return
	}

	record, err := s.circulation.ReturnBorrowRecord(r.Context(), ReturnRequest{
		UserID:     req.UserID,
		BookID:     req.BookID,
		RecordID:   req.RecordID,
		ReturnDate: returnDate,
	})
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	writeData(w, http.StatusOK, msgOK, record)
}

func (s *Server) handleGetBorrowRecord(w http.ResponseWriter, r *http.Request, claims Claims) {
	record, err := s.circulation.BorrowRecord(r.Context(), core.ID(r.PathValue("id")))
	if err != nil {
		s.storeFailed(w, r, err)
		return
	}

	if !mayActFor(claims, record.UserID.String()) {
		writeAccessDenied(w)
		return
	}

	writeData(w, http.StatusOK, msgOK, record)
}

// storeFailed writes the mapped store error and logs unexpected failures.
func (s *Server) storeFailed(w http.ResponseWriter, r *http.Request, err error) {
	if writeStoreError(w, err) {
		s.logError(r.Context(), logMsgStoreFailed, logAttrRoute, r.Pattern, logAttrError, err.Error())
	}
}

// fieldErrorList collects per-field validation messages.
type fieldErrorList []apiclient.FieldError

func (l *fieldErrorList) add(msg, path string) {
	*l = append(*l, apiclient.FieldError{Msg: msg, Path: path})
}

func (l *fieldErrorList) requireID(id core.ID, path string) {
	if id.IsZero() {
		l.add(path+" is required", path)
	}
}

func (l *fieldErrorList) requireDate(raw, path string) core.CalendarDate {
	if raw == "" {
		l.add(path+" is required", path)
		return core.CalendarDate{}
	}

	date, err := core.ParseCalendarDate(raw)
	if err != nil {
		l.add(path+" must be a date (YYYY-MM-DD)", path)
		return core.CalendarDate{}
	}

	return date
}

// write answers 400 with the collected messages. It reports whether anything was written.
func (l fieldErrorList) write(w http.ResponseWriter) bool {
	if len(l) == 0 {
		return false
	}

	writeFieldErrors(w, l)

	return true
}
