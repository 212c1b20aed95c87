package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
	"github.com/AntonStoeckl/circulation-desk/apiclient/oteladapters"
	"github.com/AntonStoeckl/circulation-desk/config"
	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/features/borrowbook"
	"github.com/AntonStoeckl/circulation-desk/desk/features/catalog"
	"github.com/AntonStoeckl/circulation-desk/desk/features/loadborrowrecord"
	"github.com/AntonStoeckl/circulation-desk/desk/features/resolvestatus"
	"github.com/AntonStoeckl/circulation-desk/desk/features/returnbook"
	"github.com/AntonStoeckl/circulation-desk/desk/orchestrator"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
	"github.com/AntonStoeckl/circulation-desk/desk/shell/observable"
)

const (
	telemetryScope  = "github.com/AntonStoeckl/circulation-desk/desk"
	msgSessionEnded = "Your session has expired. Please sign in again."
)

var errNotSignedIn = errors.New(`not signed in, run "circulation-desk login" first`)

// app holds the wired client side of the desk for one command invocation.
type app struct {
	client           *apiclient.Client
	catalog          *catalog.ListView
	books            *admin.Resource[core.BookSummary]
	ports            orchestrator.Ports
	out              io.Writer
	errOut           io.Writer
	logger           *slog.Logger
	contextualLogger shell.ContextualLogger
	pageSize         int
	clock            func() time.Time
}

func newApp(cfg *config.ClientConfig, logger *slog.Logger, providers *config.ObservabilityProviders, out, errOut io.Writer) (*app, error) {
	contextualLogger := oteladapters.NewSlogBridgeLoggerFromSlog(logger)

	var sessions apiclient.SessionStore = apiclient.NewMemorySessionStore()
	if cfg.Session.Path != "" {
		sessions = apiclient.NewFileSessionStore(cfg.Session.Path)
	}

	clientOptions := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithSessionStore(sessions),
		apiclient.WithSessionExpiredHandler(func() { fmt.Fprintln(out, msgSessionEnded) }),
		apiclient.WithUserAgent("circulation-desk/" + version),
		apiclient.WithLogger(logger),
		apiclient.WithContextualLogger(contextualLogger),
	}

	var (
		metrics *oteladapters.MetricsCollector
		tracing *oteladapters.TracingCollector
	)
	if providers.Enabled() {
		metrics = oteladapters.NewMetricsCollector(providers.Meter(telemetryScope))
		tracing = oteladapters.NewTracingCollector(providers.Tracer(telemetryScope))
		clientOptions = append(clientOptions, apiclient.WithMetrics(metrics), apiclient.WithTracing(tracing))
	}

	client, err := apiclient.NewClient(cfg.API.BaseURL, clientOptions...)
	if err != nil {
		return nil, err
	}

	a := &app{
		client:           client,
		books:            admin.Books(client, client),
		out:              out,
		errOut:           errOut,
		logger:           logger,
		contextualLogger: contextualLogger,
		pageSize:         cfg.Catalog.PageSize,
		clock:            time.Now,
	}

	w := wiring{logger: contextualLogger}
	if metrics != nil {
		w.metrics, w.tracing = metrics, tracing
	}

	names, err := catalog.NewNameResolver(
		catalog.AuthorNames(admin.Authors(client, client)),
		catalog.CategoryNames(admin.Categories(client, client)),
		cfg.Catalog.NameCacheSize,
		catalog.WithNameContextualLogger(contextualLogger),
	)
	if err != nil {
		return nil, err
	}

	catalogHandler, err := wrapQuery(w, shell.QueryHandler[catalog.Query, catalog.Result](catalog.NewQueryHandler(client, names)))
	if err != nil {
		return nil, err
	}
	a.catalog = catalog.NewListView(catalogHandler, cfg.Catalog.PageSize)

	statusHandler, err := wrapQuery(w, shell.QueryHandler[resolvestatus.Query, core.BorrowRelation](resolvestatus.NewQueryHandler(client)))
	if err != nil {
		return nil, err
	}

	recordHandler, err := wrapQuery(w, shell.QueryHandler[loadborrowrecord.Query, core.BorrowRecord](loadborrowrecord.NewQueryHandler(client)))
	if err != nil {
		return nil, err
	}

	borrowHandler, err := wrapCommand(w, shell.CommandHandler[borrowbook.Command](borrowbook.NewCommandHandler(client)))
	if err != nil {
		return nil, err
	}

	returnHandler, err := wrapCommand(w, shell.CommandHandler[returnbook.Command](returnbook.NewCommandHandler(client)))
	if err != nil {
		return nil, err
	}

	a.ports = orchestrator.Ports{
		Resolver: resolvestatus.NewResolver(statusHandler, resolvestatus.WithContextualLogger(contextualLogger)),
		Records:  recordHandler,
		Borrow:   borrowHandler,
		Return:   returnHandler,
	}

	return a, nil
}

// profile returns the signed-in user.
func (a *app) profile() (apiclient.Profile, error) {
	session, ok := a.client.Session()
	if !ok {
		return apiclient.Profile{}, errNotSignedIn
	}

	return session.Profile, nil
}

// wiring carries the observability collectors every handler is wrapped with.
type wiring struct {
	logger  shell.ContextualLogger
	metrics shell.MetricsCollector
	tracing shell.TracingCollector
}

func wrapQuery[Q shell.Query, R any](w wiring, handler shell.QueryHandler[Q, R]) (shell.QueryHandler[Q, R], error) {
	opts := []observable.QueryOption[Q, R]{observable.WithQueryContextualLogging[Q, R](w.logger)}
	if w.metrics != nil {
		opts = append(opts,
			observable.WithQueryMetrics[Q, R](w.metrics),
			observable.WithQueryTracing[Q, R](w.tracing),
		)
	}

	return observable.NewQueryWrapper(handler, opts...)
}

func wrapCommand[C shell.Command](w wiring, handler shell.CommandHandler[C]) (shell.CommandHandler[C], error) {
	opts := []observable.CommandOption[C]{observable.WithCommandContextualLogging[C](w.logger)}
	if w.metrics != nil {
		opts = append(opts,
			observable.WithCommandMetrics[C](w.metrics),
			observable.WithCommandTracing[C](w.tracing),
		)
	}

	return observable.NewCommandWrapper(handler, opts...)
}
