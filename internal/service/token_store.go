package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	accessTokenKeyPrefix  = "access_token"
	refreshTokenKeyPrefix = "refresh_token"

	revokeScanCount = 100
)

// TokenStore is the allow-list of issued token ids. A token whose id is
// missing from the store is treated as revoked.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string, accessTTL, refreshTTL time.Duration) error
	IsAccessTokenActive(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	// ConsumeRefreshToken removes the refresh token id and reports whether it was present.
	ConsumeRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type redisTokenStore struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewTokenStore(client *redis.Client, log *logrus.Logger) TokenStore {
	return &redisTokenStore{
		client: client,
		log:    log,
	}
}

func accessTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", accessTokenKeyPrefix, userID.String(), tokenID)
}

func refreshTokenKey(userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s:%s:%s", refreshTokenKeyPrefix, userID.String(), tokenID)
}

func (s *redisTokenStore) Save(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string, accessTTL, refreshTTL time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accessTokenKey(userID, accessTokenID), "valid", accessTTL)
	pipe.Set(ctx, refreshTokenKey(userID, refreshTokenID), "valid", refreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to store tokens for user %s: %+v", userID, err)
		return fmt.Errorf("store tokens for user %s: %w", userID, err)
	}
	return nil
}

func (s *redisTokenStore) IsAccessTokenActive(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	exists, err := s.client.Exists(ctx, accessTokenKey(userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check access token for user %s: %+v", userID, err)
		return false, fmt.Errorf("check access token for user %s: %w", userID, err)
	}
	return exists > 0, nil
}

func (s *redisTokenStore) ConsumeRefreshToken(ctx context.Context, userID uuid.UUID, tokenID string) (bool, error) {
	deleted, err := s.client.Del(ctx, refreshTokenKey(userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to consume refresh token for user %s: %+v", userID, err)
		return false, fmt.Errorf("consume refresh token for user %s: %w", userID, err)
	}
	return deleted > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	keys := []string{accessTokenKey(userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, refreshTokenKey(userID, refreshTokenID))
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to revoke tokens for user %s: %+v", userID, err)
		return fmt.Errorf("revoke tokens for user %s: %w", userID, err)
	}
	return nil
}

// RevokeAll drops every token issued to the user.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, prefix := range []string{accessTokenKeyPrefix, refreshTokenKeyPrefix} {
		pattern := fmt.Sprintf("%s:%s:*", prefix, userID.String())
		iter := s.client.Scan(ctx, 0, pattern, revokeScanCount).Iterator()

		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			s.log.Warnf("Failed to scan %s keys for user %s: %+v", prefix, userID, err)
			return fmt.Errorf("scan %s keys for user %s: %w", prefix, userID, err)
		}

		if len(keys) == 0 {
			continue
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			s.log.Warnf("Failed to delete %s keys for user %s: %+v", prefix, userID, err)
			return fmt.Errorf("delete %s keys for user %s: %w", prefix, userID, err)
		}
	}
	return nil
}
