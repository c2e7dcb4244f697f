package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rbmarquez/doctorq/pkg/rbac"
)

const (
	DefaultKeyPrefix   = "doctorq:permissions:"
	DefaultSnapshotTTL = 5 * time.Minute
)

// PermissionStore keeps permission set snapshots in Redis so that several
// service instances share the result of one authority fetch.
// Values are JSON-encoded rbac.Snapshot documents with a TTL.
type PermissionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StoreOption configures a PermissionStore.
type StoreOption func(*PermissionStore)

// WithKeyPrefix sets the key namespace. Empty prefixes are ignored.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *PermissionStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithSnapshotTTL sets how long snapshots live in Redis. Non-positive values are ignored.
func WithSnapshotTTL(ttl time.Duration) StoreOption {
	return func(s *PermissionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewPermissionStore(client redis.UniversalClient, opts ...StoreOption) *PermissionStore {
	s := &PermissionStore{
		client: client,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PermissionStore) key(userID string) string {
	return s.prefix + userID
}

// Load returns the stored set. The boolean is false when no snapshot exists.
func (s *PermissionStore) Load(ctx context.Context, userID string) (*rbac.PermissionSet, bool, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	set, err := DecodeSnapshot(data)
	if err != nil {
		return nil, false, err
	}
	return set, true, nil
}

// DecodeSnapshot parses a stored snapshot. Groups outside the closed group
// set are dropped, together with grants under them, exactly as when the set
// is decoded from the authority.
func DecodeSnapshot(data []byte) (*rbac.PermissionSet, error) {
	var snap rbac.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Join(ErrMalformedSnapshot, err)
	}

	groups := make([]rbac.Group, 0, len(snap.Groups))
	for _, g := range snap.Groups {
		if g, ok := rbac.ParseGroup(string(g)); ok {
			groups = append(groups, g)
		}
	}
	grants := make([]rbac.Check, 0, len(snap.Grants))
	for _, c := range snap.Grants {
		if c.Group.Valid() {
			grants = append(grants, c)
		}
	}
	snap.Groups, snap.Grants = groups, grants

	return rbac.NewPermissionSet(snap), nil
}

// Save stores the snapshot of set, replacing any previous value.
func (s *PermissionStore) Save(ctx context.Context, userID string, set *rbac.PermissionSet) error {
	data, err := json.Marshal(set.Snapshot())
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

// Delete removes the snapshot. Missing keys are not an error.
func (s *PermissionStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
