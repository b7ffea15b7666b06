package ports

import (
	"context"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

// Prompter obtains explicit user decisions the editors cannot make alone.
type Prompter interface {
	// ConfirmDuplicate presents the duplicate records found for a candidate
	// and returns true if the user wants to save anyway. Declining is a
	// normal abort, not an error.
	ConfirmDuplicate(ctx context.Context, duplicates []entities.Relationship) (bool, error)
}

// Alerter surfaces blocking messages: validation failures and transport
// errors. The form stays editable after an alert.
type Alerter interface {
	Alert(message string)
}

// Window is the handle to the surface hosting an editor.
type Window interface {
	Close()
}
