package connectors

import (
	"context"

	"go.uber.org/zap"

	"simventas/internal/inbox"
)

type FetchService struct {
	connector MailConnector
	store     *MailStore
	logger    *zap.Logger
}

type FetchResult struct {
	Fetched int `json:"fetched"`
	Stored  int `json:"stored"`
	New     int `json:"new"`
}

func NewFetchService(repo *inbox.Repo, rawMailDir string, connector MailConnector, logger *zap.Logger) *FetchService {
	return &FetchService{
		connector: connector,
		store:     NewMailStore(repo, rawMailDir),
		logger:    logger,
	}
}

func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	res := FetchResult{Fetched: len(messages)}
	for _, msg := range messages {
		_, fresh, err := s.store.Store(ctx, msg)
		if err != nil {
			return res, err
		}
		res.Stored++
		if fresh {
			res.New++
		}
	}

	s.logger.Info("mail fetched",
		zap.String("label", label),
		zap.Int("fetched", res.Fetched),
		zap.Int("new", res.New),
	)
	return res, nil
}
