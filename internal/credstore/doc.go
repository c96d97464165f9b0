package credstore

// Package credstore loads, validates and persists the credential table kept
// in a CSV file.
//
// The file is the single source of truth: it is read in full for every
// operation and rewritten in full (temp file + rename) after a change.
// Update serializes read-modify-write cycles so concurrent logins cannot
// drop each other's bookkeeping.
//
// Passwords are stored and compared in plaintext. This mirrors the data
// files the dashboard is fed with and is not suitable for a real
// deployment.
