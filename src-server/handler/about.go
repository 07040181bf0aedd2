// This package contains the general Discord Interaction handlers, the
// birthday ones live in `birthday_handler`.
//
// There should be 2 functions per handler, one for adding the handler &
// information to send to Discord (public), and one for handling the
// interaction (private).
//
// Only return errors when it's the backend's fault, nil if user's fault.
package handler
