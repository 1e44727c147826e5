package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/hybridchat/hchat/chat"
	"github.com/ZanzyTHEbar/hybridchat/hchat/config"
	"github.com/ZanzyTHEbar/hybridchat/hchat/db"
	"github.com/ZanzyTHEbar/hybridchat/hchat/intent"
	"github.com/ZanzyTHEbar/hybridchat/hchat/learning"
	"github.com/ZanzyTHEbar/hybridchat/hchat/pipeline"
	"github.com/ZanzyTHEbar/hybridchat/hchat/session"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	service *chat.Service
	closers []func() error
}

func wireApp(ctx context.Context, configPath string, logOut io.Writer) (a *app, err error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	a = &app{cfg: cfg, logger: newLogger(cfg.Log, logOut)}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	repo, err := a.wireRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("wire learned repository: %w", err)
	}

	store, err := a.wireSessionStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	cc := cfg.Classifier
	artifacts, err := intent.LoadArtifacts(ctx, intent.ArtifactConfig{
		Backend:       intent.Backend(cc.Backend),
		IntentsPath:   cc.IntentsPath,
		ModelPath:     cc.ModelPath,
		TokenizerPath: cc.TokenizerPath,
		LabelsPath:    cc.LabelsPath,
		MaxSeqLen:     cc.MaxSeqLen,
		HugotModel:    cc.HugotModel,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("wire intent classifier: %w", err)
	}
	a.closers = append(a.closers, artifacts.Close)

	orch := pipeline.NewFactory(cfg, a.logger).CreateOrchestrator(store, repo, artifacts)
	a.service = chat.NewService(orch, store, repo, a.logger)
	return a, nil
}

func (a *app) wireRepository(ctx context.Context) (learning.Repository, error) {
	dc := a.cfg.Database
	switch dc.Driver {
	case "supabase":
		return learning.NewSupabaseRepository(learning.SupabaseConfig{
			URL:    dc.SupabaseURL,
			APIKey: dc.SupabaseKey,
		})
	case "libsql", "":
		conn, err := db.Connect(ctx, db.Config{DSN: dc.DSN, AuthToken: dc.AuthToken}, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		return learning.NewLibSQLRepository(conn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", dc.Driver)
	}
}

func (a *app) wireSessionStore(ctx context.Context) (session.Store, error) {
	sc := a.cfg.Session
	opts := []session.StoreOption{
		session.WithRetention(session.Retention{MaxTurns: sc.MaxTurns, KeepTurns: sc.KeepTurns}),
	}

	if session.StoreType(sc.Driver) == session.StoreTypeRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     sc.RedisAddr,
			Password: sc.RedisPassword,
			DB:       sc.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", sc.RedisAddr, err)
		}
		opts = append(opts, session.WithRedisClient(client), session.WithRedisTTL(sc.TTL))
	}

	store, err := session.NewStore(session.StoreType(sc.Driver), opts...)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases resources in reverse wiring order.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newLogger(lc config.LogConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil || lc.Level == "" {
		level = zerolog.InfoLevel
	}

	if lc.Format != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
