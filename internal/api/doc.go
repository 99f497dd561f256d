// Package api provides the HTTP REST API and WebSocket event stream for
// ShadeSync Core.
//
// It exposes account, device, schedule, weather, and settings endpoints
// to the web and mobile clients, and broadcasts command and mode events
// over WebSocket.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
