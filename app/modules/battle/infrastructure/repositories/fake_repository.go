package battledb

import (
	"context"
)

// FakeRepository is a programmable stub for the Repository interface.
// Methods without a configured Fn fall back to an empty-store default.
type FakeRepository struct {
	GetByURLFn         func(ctx context.Context, guildID, battleURL string) (*Battle, error)
	InsertFn           func(ctx context.Context, battle *Battle) error
	LatestFn           func(ctx context.Context, guildID string) (*Battle, error)
	ListPendingFn      func(ctx context.Context, guildID string) ([]*Battle, error)
	UpdateResolutionFn func(ctx context.Context, id int64, kills, deaths int, isVictory bool, battleURL string) error
	CountForGuildFn    func(ctx context.Context, guildID string) (int, error)
}

var _ Repository = (*FakeRepository)(nil)

func (f *FakeRepository) GetByURL(ctx context.Context, guildID, battleURL string) (*Battle, error) {
	if f.GetByURLFn != nil {
		return f.GetByURLFn(ctx, guildID, battleURL)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) Insert(ctx context.Context, battle *Battle) error {
	if f.InsertFn != nil {
		return f.InsertFn(ctx, battle)
	}
	return nil
}

func (f *FakeRepository) Latest(ctx context.Context, guildID string) (*Battle, error) {
	if f.LatestFn != nil {
		return f.LatestFn(ctx, guildID)
	}
	return nil, ErrNotFound
}

func (f *FakeRepository) ListPending(ctx context.Context, guildID string) ([]*Battle, error) {
	if f.ListPendingFn != nil {
		return f.ListPendingFn(ctx, guildID)
	}
	return nil, nil
}

func (f *FakeRepository) UpdateResolution(ctx context.Context, id int64, kills, deaths int, isVictory bool, battleURL string) error {
	if f.UpdateResolutionFn != nil {
		return f.UpdateResolutionFn(ctx, id, kills, deaths, isVictory, battleURL)
	}
	return nil
}

func (f *FakeRepository) CountForGuild(ctx context.Context, guildID string) (int, error) {
	if f.CountForGuildFn != nil {
		return f.CountForGuildFn(ctx, guildID)
	}
	return 0, nil
}
