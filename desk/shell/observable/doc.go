// Package observable instruments command and query handlers at wiring time so
// feature handlers stay free of metrics, tracing and logging code.
//
//	borrow, err := observable.NewCommandWrapper(
//		shell.CommandHandler[borrowbook.Command](borrowbook.NewCommandHandler(client)),
//		observable.WithCommandMetrics[borrowbook.Command](metrics),
//		observable.WithCommandContextualLogging[borrowbook.Command](logger),
//	)
//
// Both wrappers report through shell.Instrumentation.
package observable
