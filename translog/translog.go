package translog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/gofrs/flock"
)

// Genesis is the literal prev_hash value for the first entry in a log.
const Genesis = "GENESIS"

// Entry is one line of the transparency log.
type Entry struct {
	Timestamp   string
	ReceiptHash string
	PrevHash    string
	EntryHash   string
}

// Log is a single append-only, hash-chained text file. Appends and the
// read-last-line step that precedes them are serialized across processes
// with an exclusive file lock, per spec section 5's single-writer
// discipline.
type Log struct {
	path string
	lock *flock.Flock
}

// Open returns a Log bound to path. The file is created on first Append if
// it does not already exist.
func Open(path string) *Log {
	return &Log{path: path, lock: flock.New(path + ".lock")}
}

// Append computes entry_hash from the log's current tail and writes one new
// line, returning the resulting Entry.
func (l *Log) Append(receiptHash, timestamp string) (*Entry, error) {
	if err := l.lock.Lock(); err != nil {
		return nil, err
	}
	defer l.lock.Unlock()

	prevHash, err := l.tailEntryHash()
	if err != nil {
		return nil, err
	}

	entryHash := computeEntryHash(prevHash, receiptHash, timestamp)
	entry := &Entry{Timestamp: timestamp, ReceiptHash: receiptHash, PrevHash: prevHash, EntryHash: entryHash}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	line := formatLine(entry)
	if _, err := f.WriteString(line); err != nil {
		return nil, err
	}
	return entry, nil
}

func (l *Log) tailEntryHash() (string, error) {
	entries, err := l.readEntries()
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return Genesis, nil
	}
	return entries[len(entries)-1].EntryHash, nil
}

func (l *Log) readEntries() ([]Entry, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Entries returns every entry currently in the log, in append order.
func (l *Log) Entries() ([]Entry, error) {
	return l.readEntries()
}

// Verify replays entry_hash from Genesis forward over every line and
// reports whether each matches what is stored. The returned index is the
// position of the first broken link, or -1 if the chain is intact.
func Verify(entries []Entry) (ok bool, brokenAt int, err error) {
	prev := Genesis
	for i, e := range entries {
		if e.PrevHash != prev {
			return false, i, nil
		}
		want := computeEntryHash(prev, e.ReceiptHash, e.Timestamp)
		if want != e.EntryHash {
			return false, i, nil
		}
		prev = e.EntryHash
	}
	return true, -1, nil
}

func computeEntryHash(prevHash, receiptHash, timestamp string) string {
	h := sha256.New()
	h.Write([]byte(prevHash))
	h.Write([]byte("\n"))
	h.Write([]byte(receiptHash))
	h.Write([]byte("\n"))
	h.Write([]byte(timestamp))
	return hex.EncodeToString(h.Sum(nil))
}

func formatLine(e *Entry) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\n", e.Timestamp, e.ReceiptHash, e.PrevHash, e.EntryHash)
}

func parseLine(line string) (Entry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 4 {
		return Entry{}, ErrMalformedEntry
	}
	return Entry{Timestamp: fields[0], ReceiptHash: fields[1], PrevHash: fields[2], EntryHash: fields[3]}, nil
}
