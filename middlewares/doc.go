// Package middlewares provides HTTP middleware for Proton applications.
//
// # Request ID
//
// RequestID middleware assigns a unique ID to each request for tracing and debugging.
// It checks incoming headers for existing IDs or generates new ones using ULID.
//
//	app := proton.New(
//	    proton.WithMiddleware(
//	        middlewares.RequestID(),
//	    ),
//	)
//
// Use RequestIDExtractor() with WithLogger for automatic request_id in all logs:
//
//	app := proton.New(
//	    proton.WithLogger("api", middlewares.RequestIDExtractor()),
//	    proton.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Timeout
//
// Timeout middleware bounds handler execution. A handler that overruns
// yields a TimeoutError, rendered as 503 by the default exception decorator.
//
//	app.GET("/reports", h.build, middlewares.Timeout(5*time.Second))
package middlewares
