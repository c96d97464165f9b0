package datafs

// Package datafs provides locked access helpers for small data files that
// are rewritten as a whole (the credential table).
//
// Locking contract:
//   ReadFile            shared lock, consistent snapshot
//   WriteFileAtomic     exclusive lock, temp file + rename
//   Exclusive(path, fn) exclusive lock held across a read-modify-write
//
// Locks apply inside the process (per cleaned path) and, on unix, across
// processes through flock(2) on "<path>.lock".
