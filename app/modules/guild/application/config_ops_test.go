package guildservice

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
	guildmetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/guild"
)

func newTestGuildService(repo guilddb.Repository) *GuildService {
	return NewGuildService(
		repo,
		slog.New(slog.DiscardHandler),
		&guildmetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
	)
}

func TestGuildService_UpsertConfig(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		repo        *guilddb.FakeRepository
		config      *guilddb.GuildConfig
		wantSuccess bool
		wantErr     bool
		failReason  string
	}{
		{
			name: "success",
			repo: &guilddb.FakeRepository{},
			config: &guilddb.GuildConfig{
				GuildID:          "guild-1",
				KillboardGuildID: "kb-alpha",
				BattleChannelID:  "chan-9",
				SyncEnabled:      true,
			},
			wantSuccess: true,
		},
		{
			name:       "nil config",
			repo:       &guilddb.FakeRepository{},
			config:     nil,
			failReason: ErrNilConfig.Error(),
		},
		{
			name:       "missing guild id",
			repo:       &guilddb.FakeRepository{},
			config:     &guilddb.GuildConfig{KillboardGuildID: "kb-alpha"},
			failReason: ErrMissingGuildID.Error(),
		},
		{
			name: "sync enabled without killboard id",
			repo: &guilddb.FakeRepository{},
			config: &guilddb.GuildConfig{
				GuildID:     "guild-1",
				SyncEnabled: true,
			},
			failReason: ErrMissingKillboardID.Error(),
		},
		{
			name: "repository error propagates",
			repo: &guilddb.FakeRepository{
				SaveConfigFn: func(ctx context.Context, config *guilddb.GuildConfig) error {
					return errors.New("db error")
				},
			},
			config: &guilddb.GuildConfig{
				GuildID:          "guild-1",
				KillboardGuildID: "kb-alpha",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestGuildService(tt.repo)

			result, err := svc.UpsertConfig(ctx, tt.config)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			if tt.wantSuccess {
				assert.NotNil(t, result.Success)
				saved, ok := result.Success.(*guilddb.GuildConfig)
				require.True(t, ok)
				assert.False(t, saved.UpdatedAt.IsZero())
			} else {
				assert.Equal(t, tt.failReason, result.Failure)
			}
		})
	}
}

func TestGuildService_GetConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		stored := &guilddb.GuildConfig{GuildID: "guild-1", KillboardGuildID: "kb-alpha"}
		svc := newTestGuildService(&guilddb.FakeRepository{
			GetConfigFn: func(ctx context.Context, guildID string) (*guilddb.GuildConfig, error) {
				assert.Equal(t, "guild-1", guildID)
				return stored, nil
			},
		})

		result, err := svc.GetConfig(ctx, "guild-1")
		require.NoError(t, err)
		assert.Equal(t, stored, result.Success)
	})

	t.Run("not found is a failure result", func(t *testing.T) {
		svc := newTestGuildService(&guilddb.FakeRepository{})

		result, err := svc.GetConfig(ctx, "guild-missing")
		require.NoError(t, err)
		assert.Equal(t, guilddb.ErrNotFound.Error(), result.Failure)
	})

	t.Run("repository error propagates", func(t *testing.T) {
		svc := newTestGuildService(&guilddb.FakeRepository{
			GetConfigFn: func(ctx context.Context, guildID string) (*guilddb.GuildConfig, error) {
				return nil, errors.New("db error")
			},
		})

		_, err := svc.GetConfig(ctx, "guild-1")
		require.Error(t, err)
	})
}

func TestGuildService_SetSyncEnabled(t *testing.T) {
	ctx := context.Background()

	t.Run("enable with killboard id configured", func(t *testing.T) {
		var toggled bool
		svc := newTestGuildService(&guilddb.FakeRepository{
			GetConfigFn: func(ctx context.Context, guildID string) (*guilddb.GuildConfig, error) {
				return &guilddb.GuildConfig{GuildID: guildID, KillboardGuildID: "kb-alpha"}, nil
			},
			SetSyncEnabledFn: func(ctx context.Context, guildID string, enabled bool) error {
				toggled = enabled
				return nil
			},
		})

		result, err := svc.SetSyncEnabled(ctx, "guild-1", true)
		require.NoError(t, err)
		assert.Equal(t, true, result.Success)
		assert.True(t, toggled)
	})

	t.Run("enable without killboard id fails", func(t *testing.T) {
		svc := newTestGuildService(&guilddb.FakeRepository{
			GetConfigFn: func(ctx context.Context, guildID string) (*guilddb.GuildConfig, error) {
				return &guilddb.GuildConfig{GuildID: guildID}, nil
			},
		})

		result, err := svc.SetSyncEnabled(ctx, "guild-1", true)
		require.NoError(t, err)
		assert.Equal(t, ErrMissingKillboardID.Error(), result.Failure)
	})

	t.Run("enable for unknown guild fails", func(t *testing.T) {
		svc := newTestGuildService(&guilddb.FakeRepository{})

		result, err := svc.SetSyncEnabled(ctx, "guild-missing", true)
		require.NoError(t, err)
		assert.Equal(t, guilddb.ErrNotFound.Error(), result.Failure)
	})

	t.Run("disable skips the killboard id check", func(t *testing.T) {
		svc := newTestGuildService(&guilddb.FakeRepository{
			GetConfigFn: func(ctx context.Context, guildID string) (*guilddb.GuildConfig, error) {
				t.Fatal("disable must not read the config")
				return nil, nil
			},
		})

		result, err := svc.SetSyncEnabled(ctx, "guild-1", false)
		require.NoError(t, err)
		assert.Equal(t, false, result.Success)
	})
}

func TestGuildService_ListSyncEnabled(t *testing.T) {
	ctx := context.Background()
	configs := []*guilddb.GuildConfig{
		{GuildID: "guild-1", KillboardGuildID: "kb-alpha", SyncEnabled: true},
		{GuildID: "guild-2", KillboardGuildID: "kb-beta", SyncEnabled: true},
	}
	svc := newTestGuildService(&guilddb.FakeRepository{
		ListSyncEnabledFn: func(ctx context.Context) ([]*guilddb.GuildConfig, error) {
			return configs, nil
		},
	})

	got, err := svc.ListSyncEnabled(ctx)
	require.NoError(t, err)
	assert.Equal(t, configs, got)
}
