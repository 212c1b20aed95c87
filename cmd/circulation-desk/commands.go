package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/orchestrator"
)

const defaultLoanDays = 14

var (
	errUsage = errors.New("usage")

	// errNotCompleted is returned when the view rejected or failed an action. The reason was printed as a notice.
	errNotCompleted = errors.New("action not completed")
)

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

// commands is populated in init because its handlers refer back to it through newFlagSet.
var commands map[string]command

func init() {
	commands = map[string]command{
		"login":  {usage: "login -email <email> -password <password>", run: runLogin},
		"logout": {usage: "logout", run: runLogout},
		"whoami": {usage: "whoami", run: runWhoami},
		"catalog": {
			usage: "catalog [-search text] [-category id] [-author id] [-page n]",
			run:   runCatalog,
		},
		"show":   {usage: "show <book-id>", run: runShow},
		"borrow": {usage: "borrow [-days n | -due YYYY-MM-DD] <book-id>", run: runBorrow},
		"return": {usage: "return [-acknowledge] <book-id>", run: runReturn},
		"export": {
			usage: "export [-o file] [-search text] [-category id] [-author id]",
			run:   runExport,
		},
		"admin": {usage: "admin list [-page n] [-search text] <collection>", run: runAdmin},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: circulation-desk <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	fs.Usage = func() {
		fmt.Fprintf(a.errOut, "usage: circulation-desk %s\n", commands[name].usage)
		fs.PrintDefaults()
	}

	return fs
}

// parse parses args and returns the positional arguments, which must number exactly want.
func parse(a *app, fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, errUsage
		}

		return nil, errors.Join(errUsage, err)
	}

	if fs.NArg() != want {
		fs.Usage()
		return nil, errUsage
	}

	return fs.Args(), nil
}

/*** session ***/

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", os.Getenv("LIBRARY_PASSWORD"), "account password (defaults to $LIBRARY_PASSWORD)")

	if _, err := parse(a, fs, args, 0); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		fs.Usage()
		return errUsage
	}

	session, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		printFailure(a.out, err)
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s <%s> (%s)\n", session.Profile.Name, session.Profile.Email, session.Profile.Role)

	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	if _, err := parse(a, newFlagSet(a, "logout"), args, 0); err != nil {
		return err
	}

	if err := a.client.Logout(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Signed out")

	return nil
}

func runWhoami(_ context.Context, a *app, args []string) error {
	if _, err := parse(a, newFlagSet(a, "whoami"), args, 0); err != nil {
		return err
	}

	profile, err := a.profile()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s <%s>\nid:   %s\nrole: %s\n", profile.Name, profile.Email, profile.ID, profile.Role)

	return nil
}

/*** catalog ***/

type catalogFlags struct {
	search, category, author *string
}

func addCatalogFlags(fs *flag.FlagSet) catalogFlags {
	return catalogFlags{
		search:   fs.String("search", "", "match title or ISBN"),
		category: fs.String("category", "", "category id"),
		author:   fs.String("author", "", "author id"),
	}
}

func runCatalog(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "catalog")
	filters := addCatalogFlags(fs)
	page := fs.Int("page", 1, "page number")

	if _, err := parse(a, fs, args, 0); err != nil {
		return err
	}

	a.catalog.SetFilters(*filters.search, *filters.category, *filters.author)

	result, err := a.catalog.GoToPage(ctx, *page)
	if err != nil {
		printFailure(a.out, err)
		return err
	}

	printCatalog(a.out, result)

	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export")
	filters := addCatalogFlags(fs)
	path := fs.String("o", "", "output file (default stdout)")

	if _, err := parse(a, fs, args, 0); err != nil {
		return err
	}

	a.catalog.SetFilters(*filters.search, *filters.category, *filters.author)

	if *path == "" {
		return a.catalog.ExportAll(ctx, a.out)
	}

	f, err := os.Create(*path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	counter := &countingWriter{w: f}
	exportErr := a.catalog.ExportAll(ctx, counter)
	closeErr := f.Close()

	if err := errors.Join(exportErr, closeErr); err != nil {
		printFailure(a.out, exportErr)
		return err
	}

	fmt.Fprintf(a.out, "Exported %s to %s\n", humanize.Bytes(uint64(counter.n)), *path)

	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)

	return n, err
}

/*** book detail ***/

func runShow(ctx context.Context, a *app, args []string) error {
	positional, err := parse(a, newFlagSet(a, "show"), args, 1)
	if err != nil {
		return err
	}

	view, state, err := a.openBook(ctx, core.ID(positional[0]))
	if err != nil {
		return err
	}
	defer view.Close()

	printBook(a.out, view.Book())
	printState(a.out, state, a.today())

	return nil
}

func runBorrow(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "borrow")
	days := fs.Int("days", defaultLoanDays, "loan length in days")
	due := fs.String("due", "", "due date YYYY-MM-DD, overrides -days")

	positional, err := parse(a, fs, args, 1)
	if err != nil {
		return err
	}

	view, _, err := a.openBook(ctx, core.ID(positional[0]))
	if err != nil {
		return err
	}
	defer view.Close()

	state, err := view.StartBorrow()
	if err != nil {
		return a.explain(err, state)
	}

	borrowDate := state.(core.BorrowPrompt).Form.BorrowDate

	dueDate := borrowDate.AddDays(*days)
	if *due != "" {
		if dueDate, err = core.ParseCalendarDate(*due); err != nil {
			return fmt.Errorf("-due: %w", err)
		}
	}

	if state, err = view.SetBorrowDates(borrowDate, dueDate); err != nil {
		return a.explain(err, state)
	}

	if state, err = view.SubmitBorrow(ctx); err != nil {
		return a.explain(err, state)
	}

	fmt.Fprintf(a.out, "Due %s (%s)\n", dueDate, relativeDate(a.today(), dueDate))
	printState(a.out, state, a.today())

	return nil
}

func runReturn(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "return")
	acknowledge := fs.Bool("acknowledge", false, "acknowledge the overdue fine")

	positional, err := parse(a, fs, args, 1)
	if err != nil {
		return err
	}

	view, _, err := a.openBook(ctx, core.ID(positional[0]))
	if err != nil {
		return err
	}
	defer view.Close()

	state, err := view.StartReturn(ctx)
	if err != nil {
		return a.explain(err, state)
	}

	printState(a.out, state, a.today())

	if state, err = view.AcknowledgeFine(*acknowledge); err != nil {
		return a.explain(err, state)
	}

	if state, err = view.SubmitReturn(ctx); err != nil {
		return a.explain(err, state)
	}

	printState(a.out, state, a.today())

	return nil
}

// openBook fetches a book and opens a detail view on it for the signed-in user.
func (a *app) openBook(ctx context.Context, bookID core.ID) (*orchestrator.BookDetailView, core.State, error) {
	profile, err := a.profile()
	if err != nil {
		return nil, nil, err
	}

	book, err := a.books.GetByID(ctx, bookID)
	if err != nil {
		printFailure(a.out, err)
		return nil, nil, err
	}

	ports := a.ports
	ports.Catalog = &bookRefresher{books: a.books, book: book}

	view, err := orchestrator.NewBookDetailView(ports, core.ID(profile.ID), book,
		orchestrator.WithNoticeSink(orchestrator.NoticeSinkFunc(func(n core.Notice) { printNotice(a.out, n) })),
		orchestrator.WithClock(a.clock),
		orchestrator.WithContextualLogger(a.contextualLogger),
	)
	if err != nil {
		return nil, nil, err
	}

	state, err := view.Open(ctx)
	if err != nil {
		view.Close()
		return nil, nil, err
	}

	return view, state, nil
}

// explain turns a rejected view action into a command error.
// Notices for rejected or failed submissions were already printed by the notice sink.
func (a *app) explain(err error, state core.State) error {
	switch {
	case errors.Is(err, orchestrator.ErrActionNotAvailable):
		if idle, ok := state.(core.Idle); ok {
			return fmt.Errorf("%w: %s", err, strings.ToLower(idle.Affordance.Label))
		}

		return err

	case errors.Is(err, orchestrator.ErrInvalidTransition), errors.Is(err, orchestrator.ErrViewClosed):
		return err

	default:
		return fmt.Errorf("%w: %w", errNotCompleted, err)
	}
}

func (a *app) today() core.CalendarDate {
	return core.Today(a.clock())
}

// bookRefresher re-reads a single book after a borrow or return so the view sees the new stock.
type bookRefresher struct {
	books *admin.Resource[core.BookSummary]
	book  core.BookSummary
}

func (r *bookRefresher) Refresh(ctx context.Context) error {
	book, err := r.books.GetByID(ctx, r.book.ID)
	if err != nil {
		return err
	}

	r.book = book

	return nil
}

func (r *bookRefresher) AvailableCopies(bookID core.ID) (int, bool) {
	if bookID != r.book.ID {
		return 0, false
	}

	return r.book.AvailableCopies, true
}

/*** admin ***/

var adminCollections = []string{
	admin.CollectionUsers,
	admin.CollectionRoles,
	admin.CollectionAuthors,
	admin.CollectionCategories,
	admin.CollectionPenalties,
	admin.CollectionReservations,
	admin.CollectionBooks,
}

func runAdmin(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || args[0] != "list" {
		fmt.Fprintf(a.errOut, "usage: circulation-desk %s\n", commands["admin"].usage)
		return errUsage
	}

	fs := newFlagSet(a, "admin")
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "collection specific search")

	positional, err := parse(a, fs, args[1:], 1)
	if err != nil {
		return err
	}

	collection := "/" + strings.TrimPrefix(positional[0], "/")
	if !slices.Contains(adminCollections, collection) {
		return fmt.Errorf("unknown collection %q", positional[0])
	}

	list := admin.NewListView(admin.NewResource[map[string]any](a.client, a.client, collection), a.pageSize)
	list.SetFilters(admin.Filters{"search": *search})

	if err := list.GoToPage(ctx, *page); err != nil {
		printFailure(a.out, err)
		return err
	}

	return printDocuments(a.out, list.Snapshot())
}
