package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/features/catalog"
)

// Sorted keys keep admin listings stable between runs.
var jsonOut = jsoniter.Config{SortMapKeys: true, EscapeHTML: false}.Froze()

func printNotice(w io.Writer, notice core.Notice) {
	if notice.Field != "" {
		fmt.Fprintf(w, "[%s] %s: %s\n", notice.Kind, notice.Field, notice.Message)
		return
	}

	fmt.Fprintf(w, "[%s] %s\n", notice.Kind, notice.Message)
}

// printFailure prints the notices for a failed request outside a book detail view.
func printFailure(w io.Writer, err error) {
	for _, notice := range core.NoticesForFailure(err) {
		printNotice(w, notice)
	}
}

func printCatalog(w io.Writer, result catalog.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tCATEGORY\tAVAILABLE\tPOINTS")

	for _, book := range result.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			book.ID, book.Title, orDash(book.AuthorName), orDash(book.CategoryName),
			book.AvailableCopies, book.TotalCopies, book.PointValue.StringFixed(2))
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\nPage %d of %d, %s books\n", result.Page, result.TotalPages(), humanize.Comma(int64(result.Total)))
}

func printBook(w io.Writer, book core.BookSummary) {
	fmt.Fprintf(w, "%s\n", book.Title)
	fmt.Fprintf(w, "  id:        %s\n", book.ID)

	if book.ISBN != "" {
		fmt.Fprintf(w, "  isbn:      %s\n", book.ISBN)
	}

	fmt.Fprintf(w, "  available: %d of %d\n", book.AvailableCopies, book.TotalCopies)
	fmt.Fprintf(w, "  points:    %s\n", book.PointValue.StringFixed(2))
}

// printState describes where a book detail view landed.
func printState(w io.Writer, state core.State, today core.CalendarDate) {
	switch s := state.(type) {
	case core.Idle:
		status := "not borrowed"
		switch s.Relation.Status {
		case core.BorrowStatusBorrowed:
			status = "borrowed by you"
		case core.BorrowStatusReturned:
			status = "returned"
		}

		action := s.Affordance.Label
		if !s.Affordance.Enabled {
			action += " (unavailable)"
		}

		fmt.Fprintf(w, "Status: %s\nAction: %s\n", status, action)

	case core.ReturnPrompt:
		fmt.Fprintf(w, "Borrowed %s, due %s (%s)\n",
			s.Record.BorrowDate, s.Record.DueDate, relativeDate(today, s.Record.DueDate))

		if s.Fine.IsOverdue {
			fmt.Fprintf(w, "Overdue by %s. %s (about %s points)\n",
				english.Plural(s.Fine.DaysOverdue, "day", "days"), core.FineNoticeText, s.Fine.EstimatedFine.StringFixed(2))
		}

	case core.Failed:
		fmt.Fprintf(w, "Failed: %v\n", s.Err)

	default:
		fmt.Fprintf(w, "State: %s\n", state.StateName())
	}
}

func printDocuments(w io.Writer, snapshot admin.ListSnapshot[map[string]any]) error {
	for _, item := range snapshot.Items {
		line, err := jsonOut.Marshal(item)
		if err != nil {
			return fmt.Errorf("encode item: %w", err)
		}

		fmt.Fprintf(w, "%s\n", line)
	}

	pages := 1
	if snapshot.PageSize > 0 && snapshot.Total > snapshot.PageSize {
		pages = (snapshot.Total + snapshot.PageSize - 1) / snapshot.PageSize
	}

	fmt.Fprintf(w, "\nPage %d of %d, %s items\n", snapshot.Page, pages, humanize.Comma(int64(snapshot.Total)))

	return nil
}

// relativeDate renders target relative to today, e.g. "2 weeks from now" or "3 days ago".
func relativeDate(today, target core.CalendarDate) string {
	if today.Equal(target) {
		return "today"
	}

	return humanize.RelTime(midnight(target), midnight(today), "ago", "from now")
}

func midnight(d core.CalendarDate) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
