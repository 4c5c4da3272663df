package agentconfig

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by SettingsStore lookups for absent keys.
var ErrNotFound = errors.New("agentconfig: key not found")

// MissingCredentialError reports a provider section that resolved without any
// auth material. The call must not be placed.
type MissingCredentialError struct {
	Section  string // "listen", "think" or "speak"
	Provider Provider
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("no credential resolved for %s provider %q", e.Section, e.Provider)
}

// PresetError reports a preset that cannot be used for a call.
type PresetError struct {
	ID     string
	Reason string
}

func (e *PresetError) Error() string {
	return fmt.Sprintf("preset %s: %s", e.ID, e.Reason)
}
