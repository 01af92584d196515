//go:build linux || darwin

package crypto

import "golang.org/x/sys/unix"

// LockMemory pins key material so it is never swapped to disk.
func LockMemory(b []byte) error { return unix.Mlock(b) }

// UnlockMemory releases a pin taken by LockMemory.
func UnlockMemory(b []byte) error { return unix.Munlock(b) }
