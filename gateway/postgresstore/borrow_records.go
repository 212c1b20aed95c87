package postgresstore

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/gateway/postgresstore/internal/adapters"
)

const (
	colUserID     = "user_id"
	colBookID     = "book_id"
	colBorrowDate = "borrow_date"
	colDueDate    = "due_date"
	colReturnDate = "return_date"
	colStatus     = "status"
	colSeq        = "seq"
	cteTaken      = "taken"
	cteClosed     = "closed"
	cteRestocked  = "restocked"
	castDate      = "?::date"
)

func recordColumns() []any {
	return []any{
		colID, colUserID, colBookID,
		goqu.L("borrow_date::text"), goqu.L("due_date::text"), goqu.L("return_date::text"),
		colStatus,
	}
}

func scanRecord(rows adapters.DBRows) (core.BorrowRecord, error) {
	var (
		id, userID, bookID, borrowDate, dueDate, status string
		returnDate                                      sql.NullString
	)

	if err := rows.Scan(&id, &userID, &bookID, &borrowDate, &dueDate, &returnDate, &status); err != nil {
		return core.BorrowRecord{}, err
	}

	record := core.BorrowRecord{
		ID:     core.ID(id),
		UserID: core.ID(userID),
		BookID: core.ID(bookID),
		Status: core.BorrowStatus(status),
	}

	var err error
	if record.BorrowDate, err = core.ParseCalendarDate(borrowDate); err != nil {
		return core.BorrowRecord{}, err
	}

	if record.DueDate, err = core.ParseCalendarDate(dueDate); err != nil {
		return core.BorrowRecord{}, err
	}

	if returnDate.Valid {
		returned, err := core.ParseCalendarDate(returnDate.String)
		if err != nil {
			return core.BorrowRecord{}, err
		}
		record.ReturnDate = &returned
	}

	return record, nil
}

// BorrowStatus returns the active record if there is one, else the most recent returned one.
func (s *Store) BorrowStatus(ctx context.Context, userID, bookID core.ID) (core.BorrowRelation, error) {
	stmt := s.builder.From(tableBorrowRecords).
		Select(colID, colStatus).
		Where(goqu.C(colUserID).Eq(userID.String()), goqu.C(colBookID).Eq(bookID.String())).
		Order(goqu.L("status = ?", string(core.BorrowStatusBorrowed)).Desc(), goqu.C(colSeq).Desc()).
		Limit(1)

	relation := core.NoRelation()
	if err := s.query(ctx, stmt, func(rows adapters.DBRows) error {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return err
		}
		relation = core.BorrowRelation{Status: core.BorrowStatus(status), RecordID: core.ID(id)}

		return nil
	}); err != nil {
		return core.NoRelation(), err
	}

	return relation, nil
}

// AddBorrowRecord takes one copy of the book and inserts the record in the same statement,
// so no record exists without its copy.
func (s *Store) AddBorrowRecord(ctx context.Context, req gateway.BorrowRequest) (core.BorrowRecord, error) {
	if relation, err := s.BorrowStatus(ctx, req.UserID, req.BookID); err != nil {
		return core.BorrowRecord{}, err
	} else if relation.IsBorrowed() {
		return core.BorrowRecord{}, gateway.ErrAlreadyBorrowed
	}

	record := core.BorrowRecord{
		ID:         s.newID(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowDate: req.BorrowDate,
		DueDate:    req.DueDate,
		Status:     core.BorrowStatusBorrowed,
	}

	takeCopy := s.builder.Update(tableBooks).
		Set(goqu.Record{colAvailableCopies: goqu.L("available_copies - 1")}).
		Where(goqu.C(colID).Eq(req.BookID.String()), goqu.C(colAvailableCopies).Gt(0)).
		Returning(colID)

	stmt := s.builder.Insert(tableBorrowRecords).
		With(cteTaken, takeCopy).
		Cols(colID, colUserID, colBookID, colBorrowDate, colDueDate, colStatus).
		FromQuery(s.builder.From(cteTaken).Select(
			goqu.V(record.ID.String()),
			goqu.V(record.UserID.String()),
			goqu.I(cteTaken+"."+colID),
			goqu.L(castDate, record.BorrowDate.String()),
			goqu.L(castDate, record.DueDate.String()),
			goqu.V(string(record.Status)),
		))

	var inserted int64
	err := s.withRetry(ctx, "add_borrow_record", func(ctx context.Context) error {
		var err error
		inserted, err = s.exec(ctx, stmt)
		return err
	})

	switch {
	case isUniqueViolation(err):
		return core.BorrowRecord{}, gateway.ErrAlreadyBorrowed
	case err != nil:
		return core.BorrowRecord{}, err
	case inserted == 0:
		if _, err := s.Book(ctx, req.BookID); err != nil {
			return core.BorrowRecord{}, err
		}

		return core.BorrowRecord{}, gateway.ErrNoCopiesAvailable
	}

	return record, nil
}

func (s *Store) BorrowRecord(ctx context.Context, recordID core.ID) (core.BorrowRecord, error) {
	stmt := s.builder.From(tableBorrowRecords).
		Select(recordColumns()...).
		Where(goqu.C(colID).Eq(recordID.String()))

	var (
		record core.BorrowRecord
		found  bool
	)

	if err := s.query(ctx, stmt, func(rows adapters.DBRows) error {
		var err error
		record, err = scanRecord(rows)
		found = err == nil

		return err
	}); err != nil {
		return core.BorrowRecord{}, err
	}

	if !found {
		return core.BorrowRecord{}, gateway.ErrRecordNotFound
	}

	return record, nil
}

// ReturnBorrowRecord closes the active record and puts the copy back in one statement.
// Availability never exceeds the book's total copies.
func (s *Store) ReturnBorrowRecord(ctx context.Context, req gateway.ReturnRequest) (core.BorrowRecord, error) {
	closeRecord := s.builder.Update(tableBorrowRecords).
		Set(goqu.Record{
			colStatus:     string(core.BorrowStatusReturned),
			colReturnDate: goqu.L(castDate, req.ReturnDate.String()),
		}).
		Where(
			goqu.C(colID).Eq(req.RecordID.String()),
			goqu.C(colUserID).Eq(req.UserID.String()),
			goqu.C(colBookID).Eq(req.BookID.String()),
			goqu.C(colStatus).Eq(string(core.BorrowStatusBorrowed)),
		).
		Returning(colID, colBookID)

	restock := s.builder.Update(tableBooks).
		Set(goqu.Record{colAvailableCopies: goqu.L("LEAST(available_copies + 1, total_copies)")}).
		Where(goqu.C(colID).In(s.builder.From(cteClosed).Select(colBookID))).
		Returning(colID)

	stmt := s.builder.From(cteClosed).
		With(cteClosed, closeRecord).
		With(cteRestocked, restock).
		Select(colID)

	var closed bool
	err := s.withRetry(ctx, "return_borrow_record", func(ctx context.Context) error {
		closed = false

		return s.query(ctx, stmt, func(rows adapters.DBRows) error {
			var id string
			closed = true

			return rows.Scan(&id)
		})
	})
	if err != nil {
		return core.BorrowRecord{}, err
	}

	record, err := s.BorrowRecord(ctx, req.RecordID)
	if err != nil {
		return core.BorrowRecord{}, err
	}

	if closed {
		return record, nil
	}

	return core.BorrowRecord{}, whyNotReturnable(record, req)
}

// whyNotReturnable explains a return that matched no active record, checking in the same
// order as the in-memory store.
func whyNotReturnable(record core.BorrowRecord, req gateway.ReturnRequest) error {
	if record.UserID != req.UserID || record.BookID != req.BookID {
		return gateway.ErrRecordMismatch
	}

	return gateway.ErrRecordNotActive
}
