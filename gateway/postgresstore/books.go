package postgresstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/gateway"
	"github.com/AntonStoeckl/circulation-desk/gateway/postgresstore/internal/adapters"
)

const (
	colID              = "id"
	colTitle           = "title"
	colISBN            = "isbn"
	colAuthorID        = "author_id"
	colCategoryID      = "category_id"
	colAvailableCopies = "available_copies"
	colTotalCopies     = "total_copies"
	colPointValue      = "point_value"
	castNumeric        = "?::numeric"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func bookColumns() []any {
	return []any{
		colID, colTitle, colISBN, colAuthorID, colCategoryID, colAvailableCopies, colTotalCopies,
		goqu.L("point_value::text"),
	}
}

func scanBook(rows adapters.DBRows) (core.BookSummary, error) {
	var (
		book                         core.BookSummary
		id, authorID, categoryID, pv string
	)

	if err := rows.Scan(&id, &book.Title, &book.ISBN, &authorID, &categoryID,
		&book.AvailableCopies, &book.TotalCopies, &pv); err != nil {
		return core.BookSummary{}, err
	}

	pointValue, err := decimal.NewFromString(pv)
	if err != nil {
		return core.BookSummary{}, fmt.Errorf("point_value %q: %w", pv, err)
	}

	book.ID = core.ID(id)
	book.AuthorID = core.ID(authorID)
	book.CategoryID = core.ID(categoryID)
	book.PointValue = pointValue

	return book, nil
}

func bookFilterExpressions(filter gateway.BookFilter) []exp.Expression {
	var where []exp.Expression

	if filter.Category != "" {
		where = append(where, goqu.C(colCategoryID).Eq(filter.Category.String()))
	}

	if filter.Author != "" {
		where = append(where, goqu.C(colAuthorID).Eq(filter.Author.String()))
	}

	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		where = append(where, goqu.Or(goqu.C(colTitle).ILike(pattern), goqu.C(colISBN).ILike(pattern)))
	}

	return where
}

// ListBooks orders by case-folded title, then id, like the in-memory store.
func (s *Store) ListBooks(ctx context.Context, filter gateway.BookFilter) (gateway.BookPage, error) {
	where := bookFilterExpressions(filter)

	var total int
	countStmt := s.builder.From(tableBooks).Select(goqu.COUNT(goqu.Star())).Where(where...)
	if err := s.query(ctx, countStmt, func(rows adapters.DBRows) error {
		return rows.Scan(&total)
	}); err != nil {
		return gateway.BookPage{}, err
	}

	listStmt := s.builder.From(tableBooks).
		Select(bookColumns()...).
		Where(where...).
		Order(goqu.Func("lower", goqu.C(colTitle)).Asc(), goqu.C(colID).Asc())

	if filter.Page.Size > 0 {
		listStmt = listStmt.Limit(uint(filter.Page.Size)).Offset(uint(max(filter.Page.Offset(), 0)))
	}

	items := make([]core.BookSummary, 0, max(filter.Page.Size, 0))
	if err := s.query(ctx, listStmt, func(rows adapters.DBRows) error {
		book, err := scanBook(rows)
		if err != nil {
			return err
		}
		items = append(items, book)

		return nil
	}); err != nil {
		return gateway.BookPage{}, err
	}

	return gateway.BookPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page.Number,
		PageSize: filter.Page.Size,
	}, nil
}

func (s *Store) Book(ctx context.Context, bookID core.ID) (core.BookSummary, error) {
	stmt := s.builder.From(tableBooks).Select(bookColumns()...).Where(goqu.C(colID).Eq(bookID.String()))

	var (
		book  core.BookSummary
		found bool
	)

	if err := s.query(ctx, stmt, func(rows adapters.DBRows) error {
		var err error
		book, err = scanBook(rows)
		found = err == nil

		return err
	}); err != nil {
		return core.BookSummary{}, err
	}

	if !found {
		return core.BookSummary{}, fmt.Errorf("book %s: %w", bookID, gateway.ErrNotFound)
	}

	return book, nil
}

// SaveBook creates the book when its id is empty and replaces it otherwise.
func (s *Store) SaveBook(ctx context.Context, book core.BookSummary) (core.BookSummary, error) {
	if book.ID.IsZero() {
		book.ID = s.newID()
	}

	stmt := s.builder.Insert(tableBooks).
		Rows(goqu.Record{
			colID:              book.ID.String(),
			colTitle:           book.Title,
			colISBN:            book.ISBN,
			colAuthorID:        book.AuthorID.String(),
			colCategoryID:      book.CategoryID.String(),
			colAvailableCopies: book.AvailableCopies,
			colTotalCopies:     book.TotalCopies,
			colPointValue:      goqu.L(castNumeric, book.PointValue.String()),
		}).
		OnConflict(goqu.DoUpdate(colID, goqu.Record{
			colTitle:           goqu.I("excluded." + colTitle),
			colISBN:            goqu.I("excluded." + colISBN),
			colAuthorID:        goqu.I("excluded." + colAuthorID),
			colCategoryID:      goqu.I("excluded." + colCategoryID),
			colAvailableCopies: goqu.I("excluded." + colAvailableCopies),
			colTotalCopies:     goqu.I("excluded." + colTotalCopies),
			colPointValue:      goqu.I("excluded." + colPointValue),
		}))

	err := s.withRetry(ctx, "save_book", func(ctx context.Context) error {
		_, err := s.exec(ctx, stmt)
		return err
	})
	if err != nil {
		return core.BookSummary{}, err
	}

	return book, nil
}

// DeleteBook removes the book together with its borrow records.
func (s *Store) DeleteBook(ctx context.Context, bookID core.ID) error {
	affected, err := s.exec(ctx, s.builder.Delete(tableBooks).Where(goqu.C(colID).Eq(bookID.String())))
	if err != nil {
		return err
	}

	if affected == 0 {
		return fmt.Errorf("book %s: %w", bookID, gateway.ErrNotFound)
	}

	return nil
}
