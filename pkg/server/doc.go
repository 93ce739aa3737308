// Package server hosts element instances behind HTTP and WebSocket.
//
// Each WebSocket connection to /ws/{tag} creates one Session holding one
// element created from the registry. The session runs three goroutines:
//
//   - ReadLoop: receives frames, decodes them and queues them
//   - EventLoop: applies queued frames to the element, one at a time
//   - WriteLoop: sends heartbeat pings
//
// Every element operation runs on the EventLoop goroutine, so elements
// never see concurrent calls. Patches produced by a render are written to
// the connection as patches frames with increasing sequence numbers.
//
// # Routes
//
//   - GET /healthz: liveness
//   - GET /elements: registered definitions and the builtin catalogue
//   - GET /metrics: Prometheus metrics, when a gatherer is configured
//   - GET /render/{tag}?prop=value: server-side HTML of a new element
//   - GET /ws/{tag}?prop=value: WebSocket session
//
// # Thread Safety
//
//   - Session.mu protects WebSocket writes
//   - the inbound channel serializes element operations
//   - SessionManager uses an RWMutex for the session map
package server
