// Package cache provides a Redis-backed cache for Distance Matrix responses.
//
// The cache is optional. When a client is configured with a Manager, every
// top-level OK response is stored under a key derived from the request with
// its credential removed, so callers using different API keys share entries.
// Error responses (REQUEST_DENIED, OVER_QUERY_LIMIT, ...) are never cached.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	// Create cache manager with a one day TTL
//	manager := cache.NewManager(redisClient, 24*time.Hour)
//
//	// Derive the key from a built request
//	key := cache.KeyFor(req)
//
//	// Get from cache
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - call the API
//	}
//
//	// Store a fresh payload
//	err = manager.Set(ctx, key, cache.NewEntry(payload, manager.TTL()))
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - matrix_cache_hits_total{layer="redis"} - Cache hits
//   - matrix_cache_misses_total - Cache misses
//   - matrix_cache_size_bytes{layer="redis"} - Bytes written to the cache
//   - matrix_cache_errors_total{operation} - Cache operation errors
//
// Travel times change slowly compared to how often the same destination
// list is ranked, so entries use a fixed TTL rather than response headers.
package cache
