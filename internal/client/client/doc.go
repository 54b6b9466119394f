// Package client contains the transport layer of the game client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): generic
//     Get/Post/Put/Delete plus the unauthenticated Login and Register calls.
//  2. A JSON-over-HTTP implementation (see HTTPClient). Every request carries
//     Content-Type, an X-Request-ID and, when the TokenSource has one, a
//     bearer token. A 401 on Get or Post triggers one token refresh and one
//     retry; Put and Delete never refresh.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     database with embedded goose migrations.
//
// # Error Handling
//
// HTTP statuses are returned in Response, never as errors. Transport failures
// and bodies that are not JSON are returned as errors wrapping ErrNetwork.
package client
