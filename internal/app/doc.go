// Package app wires configuration, logging, telemetry, services and the HTTP
// router into a runnable server.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML, .env, environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the health and consolidation services
//	4. Build the chi router with middleware and handlers
//	5. Create the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. In-flight
// requests get Server.ShutdownTimeout to finish before telemetry providers
// are flushed.
//
// # Error Handling
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
