package model

import "context"

// SettingsStore persists one settings record per user.
type SettingsStore interface {
	// Get returns the stored record for userID. The bool is false when no
	// record exists; that is not an error and must cause no write.
	Get(ctx context.Context, userID int64) (Settings, bool, error)

	// Upsert merges patch over the existing record, or over DefaultSettings
	// when none exists, persists the result, and returns it. The stored
	// record is always fully populated.
	Upsert(ctx context.Context, userID int64, patch Patch) (Settings, error)

	// Users returns the IDs of all users with a stored record.
	Users(ctx context.Context) ([]int64, error)

	Close() error
}

// SearchProvider turns a user's settings into job postings from one board.
// Implementations return an error on any internal fault; the caller contains
// it and treats the provider as having returned nothing.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, settings Settings) ([]Posting, error)
}

// SendOptions controls keyboard markup on an outgoing message.
type SendOptions struct {
	Keyboard       [][]string // reply keyboard rows, nil for none
	RemoveKeyboard bool       // remove any active reply keyboard
}

// Sender is the outbound half of the chat transport.
type Sender interface {
	// Send delivers an HTML-formatted message and returns its message ID.
	Send(ctx context.Context, userID int64, text string, opts SendOptions) (int64, error)

	// Edit replaces the text of a previously sent message.
	Edit(ctx context.Context, userID int64, messageID int64, text string) error
}
