package connectors

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"simventas/internal"
	"simventas/internal/inbox"
)

// MailStore keeps the raw .eml on disk and its metadata in the inbox, both
// keyed by the SHA-256 of the raw bytes.
type MailStore struct {
	inbox      *inbox.Repo
	rawMailDir string
}

func NewMailStore(repo *inbox.Repo, rawMailDir string) *MailStore {
	return &MailStore{inbox: repo, rawMailDir: rawMailDir}
}

// Store returns the inbox entry and whether the message was seen for the first time.
func (s *MailStore) Store(ctx context.Context, msg internal.FetchedMailMessage) (internal.InboxMessage, bool, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.InboxMessage{}, false, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.InboxMessage{}, false, err
		}
	}

	_, seen, err := s.inbox.Get(ctx, hash)
	if err != nil {
		return internal.InboxMessage{}, false, err
	}
	stored, err := s.inbox.Upsert(ctx, internal.InboxMessage{
		Hash:       hash,
		Provider:   msg.Provider,
		MessageID:  msg.MessageID,
		Subject:    msg.Subject,
		Sender:     msg.From,
		ReceivedAt: msg.ReceivedAt,
		RawRef:     rawPath,
	})
	return stored, !seen, err
}
