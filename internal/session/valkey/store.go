package sessionvalkey

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"
)

type store struct {
	valkey valkey.Client
	prefix string
}

func newStore(valkeyClient valkey.Client, prefix string) *store {
	prefix = strings.TrimSuffix(prefix, ":")
	return &store{
		valkey: valkeyClient,
		prefix: prefix,
	}
}

// Set stores val under the object key. A non-positive ttl stores it without
// expiry.
func (s *store) Set(ctx context.Context, objectType, id string, val any, ttl time.Duration) error {
	key := s.key(objectType, id)
	bytes, err := s.encode(val)
	if err != nil {
		return fmt.Errorf("encoding data: %w", err)
	}

	value := s.valkey.B().Set().Key(key).Value(valkey.BinaryString(bytes))
	var cmd valkey.Completed
	if seconds := int64(ttl / time.Second); seconds > 0 {
		cmd = value.ExSeconds(seconds).Build()
	} else {
		cmd = value.Build()
	}

	if err := s.valkey.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (s *store) Exists(ctx context.Context, objectType, id string) (bool, error) {
	key := s.key(objectType, id)
	n, err := s.valkey.Do(ctx, s.valkey.B().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("executing exists command: %w", err)
	}

	return n > 0, nil
}

func (s *store) key(objectType string, objectID string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, objectType, objectID)
}

func (s *store) encode(v any) ([]byte, error) {
	bytes, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling json: %w", err)
	}

	return bytes, nil
}
