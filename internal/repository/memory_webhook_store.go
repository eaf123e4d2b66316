package repository

import (
	"context"
	"sync"

	"StockPulse/internal/domain/models"
)

// MemoryWebhookStore keeps webhook config and delivery history in process
// memory. One mutex guards both collections so config reads, appends and
// pruning stay atomic per subscriber.
type MemoryWebhookStore struct {
	mu         sync.Mutex
	configs    map[string]models.WebhookConfig
	deliveries map[string][]models.WebhookDelivery
}

// NewMemoryWebhookStore creates an empty in-memory store.
func NewMemoryWebhookStore() *MemoryWebhookStore {
	return &MemoryWebhookStore{
		configs:    make(map[string]models.WebhookConfig),
		deliveries: make(map[string][]models.WebhookDelivery),
	}
}

func (s *MemoryWebhookStore) GetConfig(_ context.Context, userID string) (*models.WebhookConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		return nil, nil
	}
	out := cfg
	return &out, nil
}

func (s *MemoryWebhookStore) PutConfig(_ context.Context, userID string, cfg *models.WebhookConfig) error {
	s.mu.Lock()
	s.configs[userID] = *cfg
	s.mu.Unlock()
	return nil
}

func (s *MemoryWebhookStore) DeleteConfig(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.configs, userID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryWebhookStore) AppendDelivery(_ context.Context, userID string, d *models.WebhookDelivery, maxKeep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := append(s.deliveries[userID], *d)
	if maxKeep > 0 && len(hist) > maxKeep {
		hist = hist[len(hist)-maxKeep:]
	}
	s.deliveries[userID] = hist
	return nil
}

func (s *MemoryWebhookStore) Deliveries(_ context.Context, userID string) ([]models.WebhookDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hist := s.deliveries[userID]
	out := make([]models.WebhookDelivery, len(hist))
	copy(out, hist)
	return out, nil
}
