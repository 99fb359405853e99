package catalogcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-tarot/internal/domain/reading"
)

// ValkeyStore shares the catalog between processes through Valkey.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "tarot"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) GetCatalog(ctx context.Context) ([]reading.Card, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.catalogKey()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var cards []reading.Card
	if err := json.Unmarshal([]byte(payload), &cards); err != nil {
		return nil, false, err
	}
	return cards, true, nil
}

func (s *ValkeyStore) SaveCatalog(ctx context.Context, cards []reading.Card, ttl time.Duration) error {
	payload, err := json.Marshal(cards)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.catalogKey()).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) catalogKey() string {
	return fmt.Sprintf("%s:catalog", s.prefix)
}

var _ reading.CatalogCache = (*ValkeyStore)(nil)
