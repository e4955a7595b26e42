// Copyright (c) Mainflux
// SPDX-License-Identifier: Apache-2.0

// Package redis contains identity storage shared by venue terminals through
// a Redis instance.
package redis

import (
	"context"
	"fmt"

	"github.com/MainfluxLabs/storefront/identity"
	"github.com/MainfluxLabs/storefront/pkg/errors"
	"github.com/go-redis/redis/v8"
)

const keyPrefix = "storefront"

var _ identity.Storage = (*storage)(nil)

type storage struct {
	client  *redis.Client
	profile string
}

// NewStorage returns redis identity storage. Profile namespaces the keys so
// that terminals sharing one instance keep separate identities.
func NewStorage(client *redis.Client, profile string) identity.Storage {
	return &storage{
		client:  client,
		profile: profile,
	}
}

func (s *storage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", identity.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrStorage, err)
	}

	return val, nil
}

func (s *storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrStorage, err)
	}

	return nil
}

func (s *storage) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrap(errors.ErrStorage, err)
	}

	return nil
}

func (s *storage) key(key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, s.profile, key)
}
