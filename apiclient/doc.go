// Package apiclient provides the Request Client for the library backend.
//
// Every backend call goes through Client.Do, which
//   - attaches the bearer credential of the current Session (if any),
//   - encodes request bodies and decodes the {statusType, message, data} envelope,
//   - classifies failures into APIError kinds (network, validation, authorization, not found, server),
//   - handles session expiry globally: the SessionStore is cleared, the SessionExpiredHandler
//     is notified once, and ErrSessionExpired is returned instead of an APIError.
//
// The Client never retries. Callers decide whether to re-invoke a failed call.
//
// Common usage pattern:
//
//	client, err := apiclient.NewClient(baseURL,
//		apiclient.WithSessionStore(apiclient.NewFileSessionStore(path)),
//		apiclient.WithSessionExpiredHandler(func() { showLogin() }),
//	)
//	if err != nil {
//		// handle error
//	}
//
//	var record Record
//	err = client.Get(ctx, "/borrow-records/"+url.PathEscape(id), nil, &record)
//	switch {
//	case errors.Is(err, apiclient.ErrSessionExpired):
//		// already handled globally
//	case errors.Is(err, apiclient.ErrValidation):
//		// render field errors
//	}
//
// Observability is dependency-free: Logger, ContextualLogger, MetricsCollector and
// TracingCollector can be implemented with any backend; package oteladapters ships
// OpenTelemetry implementations.
package apiclient
