// This package holds the birthday event record and every state transition
// that can happen to it.
//
// All operations are pure: they take the current record (by value), the
// caller's identity, the operation arguments and the current time, and return
// either a brand new record or one of the errors in errors.go. The input record
// is never modified, so a failed call leaves the stored state untouched.
//
// Nothing in here locks, sleeps, reads the clock or talks to the database.
// Serializing writes to the same record is the job of the store package.
//
// # Example usage:
//
//	event, _ := birthday.Create("Party", now.Add(time.Hour).Unix(), "alice", now)
//	event, _ = event.ConfirmAttendance("bob", now)   // bob is coming
//	event, _ = event.ConfirmAttendance("bob", now)   // bob retracted his vote
//	event, _ = event.AddComment("carol", "Excited!")  // comment id 0
package birthday
