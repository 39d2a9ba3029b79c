package snapshotstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/rain-nowcast/internal/domain/nowcast"
)

// ValkeyStore shares the latest snapshot between processes through Valkey.
type ValkeyStore struct {
	client   valkey.Client
	prefix   string
	location string
}

// NewValkeyStore constructs a store for one location. The entry never
// expires; only a successful Replace supersedes it.
func NewValkeyStore(client valkey.Client, prefix string, location nowcast.Coordinates) *ValkeyStore {
	if prefix == "" {
		prefix = "nowcast"
	}
	return &ValkeyStore{client: client, prefix: prefix, location: location.Query()}
}

func (s *ValkeyStore) Latest(ctx context.Context) (nowcast.ForecastSnapshot, bool, error) {
	cmd := s.client.B().Get().Key(s.latestKey()).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nowcast.ForecastSnapshot{}, false, nil
		}
		return nowcast.ForecastSnapshot{}, false, err
	}
	snap, err := decodeSnapshot(payload)
	if err != nil {
		return nowcast.ForecastSnapshot{}, false, err
	}
	return snap, true, nil
}

func (s *ValkeyStore) Replace(ctx context.Context, snapshot nowcast.ForecastSnapshot) error {
	payload, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.latestKey()).Value(payload).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) latestKey() string {
	return fmt.Sprintf("%s:latest:%s", s.prefix, s.location)
}

func encodeSnapshot(snapshot nowcast.ForecastSnapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeSnapshot(payload string) (nowcast.ForecastSnapshot, error) {
	var snap nowcast.ForecastSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nowcast.ForecastSnapshot{}, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return nowcast.NewSnapshot(snap.ID, snap.Points, snap.FetchedAt, snap.Temperature, snap.Humidity), nil
}

var _ nowcast.SnapshotStore = (*ValkeyStore)(nil)
