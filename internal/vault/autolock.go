package vault

import (
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/audit"
)

// autoLockCheckInterval is how often the background task compares elapsed
// inactivity against the configured timeout.
const autoLockCheckInterval = 10 * time.Second

// startAutoLock launches the periodic inactivity check. mu held. The timer
// exists only while Unlocked with auto-lock enabled.
func (v *Vault) startAutoLock() {
	if !v.settings.AutoLockEnabled || v.stop != nil {
		return
	}
	stop := make(chan struct{})
	v.stop = stop
	go v.autoLockLoop(stop)
}

// stopAutoLock cancels the periodic check. mu held. Safe to call with no
// timer running.
func (v *Vault) stopAutoLock() {
	if v.stop != nil {
		close(v.stop)
		v.stop = nil
	}
}

func (v *Vault) autoLockLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(v.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			v.checkInactivity()
		}
	}
}

// checkInactivity locks the vault when the inactivity window has elapsed
// and signals the caller layer. A tick that races a manual lock or an
// unlock/lock cycle finds the state changed and is a no-op.
func (v *Vault) checkInactivity() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked || !v.settings.AutoLockEnabled {
		return
	}
	timeout := time.Duration(v.settings.AutoLockTimeoutMinutes) * time.Minute
	if v.now().Sub(v.lastActivity) < timeout {
		return
	}
	v.lockNow(audit.EventAutoLocked)
	select {
	case v.autoLockC <- struct{}{}:
	default:
	}
}
