package killboard

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Guild is the killboard's view of a guild.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BattleGuild is one faction present in a battle report.
type BattleGuild struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// Battle is one raw battle report from the killboard feed. Reports are a
// possibly-partial view of a real fight; the battle module merges fragments.
type Battle struct {
	ID        int64         `json:"id"`
	StartTime time.Time     `json:"startTime"`
	Guilds    []BattleGuild `json:"guilds"`
}

// TotalPlayers returns the combined player count across every faction.
func (b Battle) TotalPlayers() int {
	total := 0
	for _, g := range b.Guilds {
		total += g.Players
	}
	return total
}

// Player identifies one side of a kill event. Only the guild name is
// guaranteed to be populated.
type Player struct {
	Name      string `json:"name"`
	GuildName string `json:"guildName"`
}

// KillEvent is a single kill from the killboard event feed.
type KillEvent struct {
	Killer Player `json:"killer"`
	Victim Player `json:"victim"`
}

const (
	battleURLFormat      = "https://killboard.ashval.gg/battles/%d"
	multiBattleURLFormat = "https://killboard.ashval.gg/battles/multilog/%s"
)

// BattleReportURL returns the public permalink for a single battle report.
func BattleReportURL(id int64) string {
	return fmt.Sprintf(battleURLFormat, id)
}

// MergedBattleReportURL returns the public permalink for a merged view over
// several battle reports. IDs are sorted so the URL is stable regardless of
// the order reports were clustered in.
func MergedBattleReportURL(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf(multiBattleURLFormat, strings.Join(parts, ","))
}
