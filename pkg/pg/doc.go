// Package pg bootstraps the PostgreSQL layer behind the database session
// store: a pgx/v5 connection pool with retrying startup, goose schema
// migrations, and a pool-bound healthcheck.
//
// Config is populated from environment variables via github.com/caarlos0/env
// and controls pool limits, retry cadence, and the migrations location.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//		log.Fatal(err)
//	}
//
//	store := session.NewPGStore(pool)
package pg
