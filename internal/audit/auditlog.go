// Package audit keeps a tamper-evident, hash-chained log of vault
// lifecycle events. Entries never contain secrets or document content.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Event names recorded by the vault.
const (
	EventCreated    = "vault.created"
	EventUnlocked   = "vault.unlocked"
	EventUnlockFail = "vault.unlock_failed"
	EventLocked     = "vault.locked"
	EventAutoLocked = "vault.auto_locked"
	EventWiped      = "vault.wiped"
	EventExported   = "vault.backup_exported"
	EventImported   = "vault.backup_imported"
)

type Entry struct {
	TS    int64  `json:"ts"`
	Event string `json:"event"`
	Hash  string `json:"hash"`
}

// Log is an append-only chain: each entry's hash covers the previous hash
// and the event name, so truncation or edits break Verify.
type Log struct {
	mu       sync.Mutex
	lastHash []byte
	entries  []Entry
}

func New() *Log { return &Log{} }

func (l *Log) Append(event string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := sha256.New()
	h.Write(l.lastHash)
	h.Write([]byte(event))
	sum := h.Sum(nil)
	l.lastHash = sum

	e := Entry{TS: time.Now().Unix(), Event: event, Hash: hex.EncodeToString(sum)}
	l.entries = append(l.entries, e)
	return e
}

func (l *Log) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var prev []byte
	for i, e := range l.entries {
		h := sha256.New()
		h.Write(prev)
		h.Write([]byte(e.Event))
		sum := h.Sum(nil)
		if hex.EncodeToString(sum) != e.Hash {
			return fmt.Errorf("audit chain broken at entry %d", i)
		}
		prev = sum
	}
	return nil
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}
