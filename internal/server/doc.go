// Package server provides the web front end of sortviz: a small JSON control
// API, a websocket stream of snapshots, tones and run status, and the
// embedded browser client.
//
// # Endpoints
//
//   - GET /api/state - current run, selection, mute flag and snapshot
//   - POST /api/start - start a run, 409 while one is running
//   - POST /api/stop - cancel the running sort
//   - POST /api/reset - stop and regenerate the array
//   - POST /api/algorithm - change the selection, 409 while running
//   - POST /api/mute - set or toggle the mute flag
//   - GET /ws - websocket stream of stream.Message values
//   - POST /auth - password authentication, returns a bearer token
//   - GET / - embedded web client
//
// # Authentication
//
// When a password hash is configured, every /api and /ws request needs a
// token obtained from POST /auth, passed as "Authorization: Bearer <token>"
// or, for websockets, as a token query parameter. Without a hash the server
// is open, which is the default for a loopback listener.
//
// POST /auth and the control endpoints are rate limited per client IP.
package server
