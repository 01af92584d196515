package vault

import (
	"context"
	"fmt"
)

// Theme of the caller-facing UI. Stored encrypted with the rest of the
// settings; the vault itself only validates it.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Settings are persisted as their own encrypted record, separate from the
// document.
type Settings struct {
	AutoLockEnabled        bool  `json:"autoLockEnabled"`
	AutoLockTimeoutMinutes int   `json:"autoLockTimeout"`
	BiometricEnabled       bool  `json:"biometricEnabled"`
	Theme                  Theme `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoLockEnabled:        true,
		AutoLockTimeoutMinutes: 5,
		Theme:                  ThemeDark,
	}
}

func (s Settings) validate() error {
	if s.AutoLockTimeoutMinutes < 1 || s.AutoLockTimeoutMinutes > 60 {
		return fmt.Errorf("%w: auto-lock timeout %d outside [1,60]", ErrInvalidInput, s.AutoLockTimeoutMinutes)
	}
	switch s.Theme {
	case ThemeDark, ThemeLight:
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidInput, s.Theme)
	}
	return nil
}

// Settings returns the decrypted settings. Fails with ErrVaultLocked
// unless unlocked.
func (v *Vault) Settings() (Settings, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return Settings{}, ErrVaultLocked
	}
	return v.settings, nil
}

// SaveSettings validates, encrypts, and persists new settings, then
// reconfigures the inactivity timer to match.
func (v *Vault) SaveSettings(ctx context.Context, s Settings) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return ErrVaultLocked
	}
	if err := s.validate(); err != nil {
		return err
	}
	if err := v.persistSettings(ctx, s); err != nil {
		return err
	}
	v.settings = s
	v.lastActivity = v.now()
	v.stopAutoLock()
	v.startAutoLock()
	return nil
}

// EnableBiometric flips the biometric settings flag. The credential table
// stays an inert record store until a real second-factor protocol exists.
func (v *Vault) EnableBiometric(ctx context.Context, enabled bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateUnlocked {
		return ErrVaultLocked
	}
	s := v.settings
	s.BiometricEnabled = enabled
	if err := v.persistSettings(ctx, s); err != nil {
		return err
	}
	v.settings = s
	return nil
}
