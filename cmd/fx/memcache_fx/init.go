package memcache_fx

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	mem "gladiadores/pkg/memcache"
)

const (
	ResetTokens      = `name:"reset_tokens"`
	WebAuthnSessions = `name:"webauthn_sessions"`
	JWTDenylist      = `name:"jwt_denylist"`
)

var Module = fx.Provide(
	fx.Annotate(tokenStore("reset"), fx.ResultTags(ResetTokens)),
	fx.Annotate(tokenStore("webauthn"), fx.ResultTags(WebAuthnSessions)),
	fx.Annotate(tokenStore("deny"), fx.ResultTags(JWTDenylist)),
)

func tokenStore(prefix string) func(*redis.Client) mem.TokenStore {
	return func(client *redis.Client) mem.TokenStore {
		return mem.NewRedisTokens(client, prefix)
	}
}
