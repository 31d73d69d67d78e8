package connectors

import (
	"context"
	"fmt"

	"simventas/internal"
	"simventas/internal/config"
	"simventas/internal/connectors/gmail"
	"simventas/internal/connectors/imap"
)

type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}

// New builds the connector for provider ("gmail" or "imap").
func New(cfg config.Config, provider string) (MailConnector, error) {
	switch provider {
	case "gmail":
		c, err := gmail.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "imap":
		c, err := imap.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", provider)
	}
}
