package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags so that the
// password hash is never serialized into a response.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name; stations reference it as their owner.
//  PasswordHash – bcrypt hashed password.
//  IsAdmin      – grants the universal authorization override.
//  Stations     – denormalized count of owned stations.  It is recomputed
//                 with a COUNT query whenever the user's own profile is
//                 fetched and is never incrementally maintained.
//  CreatedAt    – timestamp of signup.
type User struct {
	ID           uint64    // users.user_id
	Username     string    // users.username
	PasswordHash string    // users.password
	IsAdmin      bool      // users.is_admin
	Stations     int       // users.stations (recomputed, see above)
	CreatedAt    time.Time // users.created_at
}
