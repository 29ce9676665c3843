package services

import (
	"context"
	"fmt"
	"time"

	"atomichabits/utils"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist records revoked tokens until they would have expired
// anyway. A nil blacklist treats every token as valid.
type RedisTokenBlacklist struct {
	Client *redis.Client
	tokens *TokenService
}

func NewTokenBlacklist(client *redis.Client, tokens *TokenService) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{Client: client, tokens: tokens}
}

func blacklistKey(tokenType, token string) string {
	return fmt.Sprintf("blacklist:%s:%s", tokenType, token)
}

// BlacklistTokens revokes an access/refresh pair. Empty tokens are skipped.
func (tb *RedisTokenBlacklist) BlacklistTokens(ctx context.Context, accessToken, refreshToken string) error {
	if tb == nil {
		return nil
	}
	if accessToken != "" {
		if err := tb.blacklist(ctx, accessToken, TokenTypeAccess); err != nil {
			return fmt.Errorf("failed to blacklist access token: %w", err)
		}
	}
	if refreshToken == "" {
		return nil
	}
	if err := tb.blacklist(ctx, refreshToken, TokenTypeRefresh); err != nil {
		return fmt.Errorf("failed to blacklist refresh token: %w", err)
	}
	return nil
}

func (tb *RedisTokenBlacklist) blacklist(ctx context.Context, token, tokenType string) error {
	claims, err := tb.tokens.ParseToken(token, tokenType)
	if err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := tb.Client.Set(ctx, blacklistKey(tokenType, token), "true", ttl).Err(); err != nil {
		return err
	}
	utils.TokenUsage.WithLabelValues(tokenType, "revoked").Inc()
	return nil
}

// IsTokenBlacklisted fails open: a Redis error is logged and the token is
// treated as valid.
func (tb *RedisTokenBlacklist) IsTokenBlacklisted(ctx context.Context, token string) bool {
	if tb == nil {
		return false
	}

	pipe := tb.Client.Pipeline()
	accessCmd := pipe.Exists(ctx, blacklistKey(TokenTypeAccess, token))
	refreshCmd := pipe.Exists(ctx, blacklistKey(TokenTypeRefresh, token))
	if _, err := pipe.Exec(ctx); err != nil {
		utils.TrackError("cache", "blacklist_check_failed")
		log.Warn("checking token blacklist", "err", err)
		return false
	}

	return accessCmd.Val() > 0 || refreshCmd.Val() > 0
}
