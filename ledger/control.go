package ledger

import "fmt"

// Control is the admin gate shared by both ledgers.
type Control struct {
	Admin  Address
	Paused bool
}

func (c *Control) RequireAdmin(caller Address) error {
	if caller.IsZero() || c == nil || caller != c.Admin {
		return fmt.Errorf("caller %s is not admin: %w", caller, ErrUnauthorized)
	}
	return nil
}

// RequireActive rejects mutating operations while the ledger is paused.
// Admin control calls and read-only queries never consult it.
func (c *Control) RequireActive() error {
	if c != nil && c.Paused {
		return ErrPaused
	}
	return nil
}
