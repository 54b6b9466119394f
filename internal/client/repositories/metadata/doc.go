// Package metadata stores opaque key/value pairs in the local SQLite
// database. It is the primary persistence target of the session store.
package metadata
