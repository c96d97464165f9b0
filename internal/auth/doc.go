package auth

// Package auth checks submitted credentials against the CSV credential
// store and carries the resulting session to the presentation layer.
//
// Authenticate is a read-modify-write transaction, not a predicate: a
// successful call bumps login_count and rewrites the store. The session
// travels in a signed cookie; Verify ties it back to the record's
// active_session_id so only the most recent login stays valid.
