// Package cache provides the shared key-value cache used for pairing sessions.
//
// It wraps github.com/redis/go-redis/v9 and exposes only the primitives the
// pairing flow depends on:
//
//   - SetIfNotExistsWithExpiration: SET key value NX EX ttl
//   - Get / GetDelete / Delete
//   - TTL for the remaining lifetime of a key
//
// The conditional set is the single global arbiter for key ownership: Redis
// executes it atomically, so of two concurrent writers of the same key exactly
// one observes true.
//
// # Usage
//
//	client, err := cache.Connect(ctx, cfg.Cache)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	ok, err := client.SetIfNotExistsWithExpiration(ctx, "pairing.code:ACE347", payload, 24*time.Hour)
package cache
