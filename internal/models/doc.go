// Package models defines the persisted domain models for the lunch club.
//
// # Models
//
//   - Member: one roster entry (username and department tag)
//   - Round: one committed formation of lunch groups, keyed by formation date
//   - Group: one lunch group inside a round
//
// Members are identified by username strings. Group membership references
// usernames rather than Member pointers so that rounds stay valid after the
// roster changes.
//
// The grouping algorithm works on its own in-memory types (package grouping);
// these models are what the store reads and writes.
package models
