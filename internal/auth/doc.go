// Package auth handles membership for the club: local accounts with
// bcrypt passwords, invite-code signup, server-side sessions backed by
// SQLite, and the Gin middleware that injects the authenticated user
// into request context.
//
// Authentication is an outer surface here; the club core never sees
// sessions or cookies, only user ids.
package auth
