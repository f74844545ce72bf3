// Package api serves the registrar HTTP JSON API.
//
// Every response uses the envelope:
//
//	{ "data": ..., "message": "..." }
//
// with the HTTP status signaling success or failure. Institution-owned
// operations require a bearer credential; user operations require the session
// cookie. Deactivating a faculty record with open course assignments is
// rejected with 409 regardless of what the client claims.
package api
