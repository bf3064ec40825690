// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each company's credentials in the hash
// "credentials:{companyID}".
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func hashKey(companyID string) string {
	return "credentials:" + companyID
}

func (s *RedisStore) APIKey(ctx context.Context, companyID, key string) (string, bool, error) {
	v, err := s.client.HGet(ctx, hashKey(companyID), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading credential %s for %s: %w", key, companyID, err)
	}
	return v, true, nil
}

// SetAPIKey stores value for key under companyID.
func (s *RedisStore) SetAPIKey(ctx context.Context, companyID, key, value string) error {
	return s.client.HSet(ctx, hashKey(companyID), key, value).Err()
}

// DeleteAPIKey removes key for companyID.
func (s *RedisStore) DeleteAPIKey(ctx context.Context, companyID, key string) error {
	return s.client.HDel(ctx, hashKey(companyID), key).Err()
}
