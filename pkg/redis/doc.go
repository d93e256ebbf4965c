// Package redis bootstraps the Redis connection behind the Redis session
// store and the shared rate limit counters: URL-based configuration from
// the environment, retrying startup, and a client-bound healthcheck.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	sessions := session.NewRedisStore(client)
//	counters := ratelimit.NewRedisStore(client)
package redis
