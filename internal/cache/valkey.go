package cache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Valkey stores entries in a Valkey (or Redis) server under a fixed key prefix.
type Valkey struct {
	client valkey.Client
	ttl    time.Duration
	prefix string
}

var _ Cache = (*Valkey)(nil)

func (v *Valkey) Get(ctx context.Context, key string) (string, bool, error) {
	cmd := v.client.B().Get().Key(v.prefix + key).Build()
	val, err := v.client.Do(ctx, cmd).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (v *Valkey) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = v.ttl
	}
	cmd := v.client.B().Set().Key(v.prefix + key).Value(value).Px(ttl).Build()
	return v.client.Do(ctx, cmd).Error()
}

func (v *Valkey) Delete(ctx context.Context, key string) error {
	cmd := v.client.B().Del().Key(v.prefix + key).Build()
	return v.client.Do(ctx, cmd).Error()
}

func (v *Valkey) Close() {
	v.client.Close()
}
