// Package models defines the client-side account and session types shared by
// the validator, the session store and the auth services.
package models
