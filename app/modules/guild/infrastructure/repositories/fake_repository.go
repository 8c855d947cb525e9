package guilddb

import "context"

// FakeRepository is a programmable stub for the Repository interface.
type FakeRepository struct {
	GetConfigFn      func(ctx context.Context, guildID string) (*GuildConfig, error)
	SaveConfigFn     func(ctx context.Context, config *GuildConfig) error
	SetSyncEnabledFn func(ctx context.Context, guildID string, enabled bool) error
	ListSyncEnabledFn func(ctx context.Context) ([]*GuildConfig, error)
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) GetConfig(ctx context.Context, guildID string) (*GuildConfig, error) {
	if f.GetConfigFn != nil {
		return f.GetConfigFn(ctx, guildID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) SaveConfig(ctx context.Context, config *GuildConfig) error {
	if f.SaveConfigFn != nil {
		return f.SaveConfigFn(ctx, config)
	}
	return nil
}

func (f *FakeRepository) SetSyncEnabled(ctx context.Context, guildID string, enabled bool) error {
	if f.SetSyncEnabledFn != nil {
		return f.SetSyncEnabledFn(ctx, guildID, enabled)
	}
	return nil
}

func (f *FakeRepository) ListSyncEnabled(ctx context.Context) ([]*GuildConfig, error) {
	if f.ListSyncEnabledFn != nil {
		return f.ListSyncEnabledFn(ctx)
	}
	return nil, nil
}
