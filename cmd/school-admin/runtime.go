package main

import (
	"context"
	"fmt"

	admin "github.com/goliatone/go-school-admin"
	"github.com/goliatone/go-school-admin/activitymap"
	"github.com/goliatone/go-school-admin/client"
	"github.com/goliatone/go-school-admin/config"
	"github.com/goliatone/go-school-admin/logging"
	"github.com/goliatone/go-school-admin/tokenstore"
	"go.uber.org/zap"
)

// runtime holds the wired dependencies shared by every command.
type runtime struct {
	logger   *zap.Logger
	store    tokenstore.Store
	api      *client.Client
	sessions *admin.SessionManager
	activity admin.ActivitySink
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	logger, err := logging.NewLogger(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &runtime{logger: logger}
	rt.activity = activityLogger(logger.Named("activity"))

	rt.store, err = tokenstore.New(ctx, cfg.StoreConfig(), tokenstore.Dependencies{})
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}

	rt.api, err = client.New(cfg.GetAPIBaseURL(),
		client.WithTimeout(cfg.API.Timeout),
		client.WithTokenSource(rt.store),
		client.WithLogger(rt.adapter("api")),
		client.WithPhoneRegion(cfg.PhoneRegion),
	)
	if err != nil {
		_ = rt.store.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}

	rt.sessions, err = admin.NewSessionManager(rt.store, rt.api,
		admin.WithSessionLogger(rt.adapter("session")),
		admin.WithSessionActivitySink(rt.activity),
		admin.WithRetainTokenOnUnreachable(cfg.GetRetainTokenOnUnreachable()),
	)
	if err != nil {
		_ = rt.store.Close()
		return nil, fmt.Errorf("init session manager: %w", err)
	}

	return rt, nil
}

func (rt *runtime) adapter(name string) admin.Logger {
	return logging.NewAdapter(rt.logger, name)
}

func (rt *runtime) Close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("token store close", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

// activityLogger writes session transitions as structured log entries.
func activityLogger(logger *zap.Logger) admin.ActivitySink {
	return admin.ActivitySinkFunc(func(_ context.Context, event admin.ActivityEvent) error {
		record := activitymap.Normalize(event,
			activitymap.WithDefaultChannel("school-admin"),
			activitymap.WithActorFallback("anonymous"),
		)
		fields := []zap.Field{
			zap.String("verb", record.Verb),
			zap.String("actor_id", record.ActorID),
			zap.String("object_type", record.ObjectType),
			zap.Time("occurred_at", record.OccurredAt),
			zap.String("channel", record.Channel),
		}
		if record.ObjectID != "" {
			fields = append(fields, zap.String("object_id", record.ObjectID))
		}
		if len(record.Metadata) > 0 {
			fields = append(fields, zap.Any("metadata", record.Metadata))
		}
		if !event.Transitioned() {
			logger.Debug("session activity", fields...)
			return nil
		}
		logger.Info("session activity", fields...)
		return nil
	})
}
