// Package translog implements the append-only, hash-chained transparency
// log: a single UTF-8 text file, one tab-separated entry per line, where
// each entry's hash commits to the entry before it. Removing, reordering
// or replacing any line breaks the chain at the first entry after the
// change, which Verify detects by replaying forward from the literal GENESIS
// value. Lines cut from the end of the file leave a shorter chain that still
// replays cleanly; Verify does not detect that.
package translog
