package battleservice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/killboard"
	battledb "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/infrastructure/repositories"
	battlemetrics "github.com/Round-Table-Club/battleboard-bot/app/observability/metrics/battle"
)

// ------------------------
// Fake stats provider
// ------------------------

// FakeStatsProvider serves canned killboard data. Pages slices the Battles
// list the way the real client pages the feed.
type FakeStatsProvider struct {
	Guilds   map[string]*killboard.Guild
	Battles  []killboard.Battle
	Events   map[int64][]killboard.KillEvent
	Page     int
	ListErr  error
	GuildErr error

	mu        sync.Mutex
	listCalls int
}

func NewFakeStatsProvider() *FakeStatsProvider {
	return &FakeStatsProvider{
		Guilds: map[string]*killboard.Guild{},
		Events: map[int64][]killboard.KillEvent{},
		Page:   20,
	}
}

func (f *FakeStatsProvider) GetGuild(ctx context.Context, guildID string) (*killboard.Guild, error) {
	if f.GuildErr != nil {
		return nil, f.GuildErr
	}
	return f.Guilds[guildID], nil
}

func (f *FakeStatsProvider) ListBattles(ctx context.Context, guildID string, page, minPlayers int) ([]killboard.Battle, error) {
	f.mu.Lock()
	f.listCalls++
	f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	start := page * f.Page
	if start >= len(f.Battles) {
		return nil, nil
	}
	end := start + f.Page
	if end > len(f.Battles) {
		end = len(f.Battles)
	}
	return f.Battles[start:end], nil
}

func (f *FakeStatsProvider) GetKillEvents(ctx context.Context, battleIDs []int64) ([]killboard.KillEvent, error) {
	var events []killboard.KillEvent
	for _, id := range battleIDs {
		events = append(events, f.Events[id]...)
	}
	return events, nil
}

func (f *FakeStatsProvider) PageSize() int { return f.Page }

func (f *FakeStatsProvider) ListCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

// ------------------------
// Fake registry
// ------------------------

type FakeRegistry struct {
	TrackedGuilds []TrackedGuild
	Err           error
}

func (f *FakeRegistry) ListSyncEnabled(ctx context.Context) ([]TrackedGuild, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TrackedGuilds, nil
}

// ------------------------
// Recording event bus
// ------------------------

type publishedMessage struct {
	Topic   string
	Message *message.Message
}

type RecordingEventBus struct {
	mu        sync.Mutex
	published []publishedMessage
}

func (b *RecordingEventBus) Publish(topic string, messages ...*message.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, msg := range messages {
		b.published = append(b.published, publishedMessage{Topic: topic, Message: msg})
	}
	return nil
}

func (b *RecordingEventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return nil, nil
}

func (b *RecordingEventBus) Close() error { return nil }

func (b *RecordingEventBus) Published(topic string) []*message.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*message.Message
	for _, p := range b.published {
		if p.Topic == topic {
			out = append(out, p.Message)
		}
	}
	return out
}

// ------------------------
// In-memory repository
// ------------------------

// memoryRepo is a stateful battledb.Repository for end-to-end style tests.
type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   []*battledb.Battle
}

var _ battledb.Repository = (*memoryRepo)(nil)

func (m *memoryRepo) GetByURL(ctx context.Context, guildID, battleURL string) (*battledb.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.GuildID == guildID && row.BattleURL == battleURL {
			cp := *row
			return &cp, nil
		}
	}
	return nil, battledb.ErrNotFound
}

func (m *memoryRepo) Insert(ctx context.Context, battle *battledb.Battle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if battle.BattleURL != "" {
		for _, row := range m.rows {
			if row.GuildID == battle.GuildID && row.BattleURL == battle.BattleURL {
				return battledb.ErrDuplicate
			}
		}
	}
	m.nextID++
	battle.ID = m.nextID
	cp := *battle
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memoryRepo) Latest(ctx context.Context, guildID string) (*battledb.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *battledb.Battle
	for _, row := range m.rows {
		if row.GuildID != guildID {
			continue
		}
		if latest == nil || row.BattleTime.After(latest.BattleTime) {
			latest = row
		}
	}
	if latest == nil {
		return nil, battledb.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *memoryRepo) ListPending(ctx context.Context, guildID string) ([]*battledb.Battle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*battledb.Battle
	for _, row := range m.rows {
		if row.GuildID == guildID && row.BattleURL == "" {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpdateResolution(ctx context.Context, id int64, kills, deaths int, isVictory bool, battleURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == id {
			row.Kills = kills
			row.Deaths = deaths
			row.IsVictory = isVictory
			row.BattleURL = battleURL
			return nil
		}
	}
	return battledb.ErrNotFound
}

func (m *memoryRepo) CountForGuild(ctx context.Context, guildID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, row := range m.rows {
		if row.GuildID == guildID && row.BattleURL != "" && row.BattleURL != battledb.StaleBattleURL {
			count++
		}
	}
	return count, nil
}

func (m *memoryRepo) all() []*battledb.Battle {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*battledb.Battle, len(m.rows))
	for i, row := range m.rows {
		cp := *row
		out[i] = &cp
	}
	return out
}

// ------------------------
// Service under test
// ------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestService(repo battledb.Repository, registry GuildRegistry, provider StatsProvider, bus *RecordingEventBus) *BattleService {
	svc := NewBattleService(
		repo,
		registry,
		provider,
		nil,
		testLogger(),
		&battlemetrics.NoOpMetrics{},
		noop.NewTracerProvider().Tracer("test"),
		DefaultConfig(),
	)
	if bus != nil {
		svc.eventBus = bus
	}
	return svc
}
