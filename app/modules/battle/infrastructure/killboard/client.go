package killboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Round-Table-Club/battleboard-bot/config"
)

const maxRedirects = 3

// Client is a read-only HTTP client for the external killboard API. All
// requests share one rate limiter so page walks respect the provider's
// request pacing.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a killboard API client from configuration.
func NewClient(cfg config.KillboardConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:   cfg.PageSize,
		httpClient: newAPIClient(cfg.Timeout),
		limiter:    rate.NewLimiter(rate.Every(cfg.RequestDelay), 1),
		logger:     logger,
	}
}

// newAPIClient returns an *http.Client configured with sensible defaults for
// killboard API calls (timeout and redirect limits).
func newAPIClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

// PageSize returns the fixed page size the feed is paged with.
func (c *Client) PageSize() int {
	return c.pageSize
}

// GetGuild fetches killboard metadata for a guild.
func (c *Client) GetGuild(ctx context.Context, guildID string) (*Guild, error) {
	var guild Guild
	if err := c.getJSON(ctx, "/guilds/"+url.PathEscape(guildID), nil, &guild); err != nil {
		return nil, err
	}
	if guild.Name == "" {
		return nil, fmt.Errorf("guild %s: empty metadata response", guildID)
	}
	return &guild, nil
}

// ListBattles fetches one page of a guild's battle feed, newest first. A
// response that is not a JSON array is treated as end of data, not an error.
func (c *Client) ListBattles(ctx context.Context, guildID string, page, minPlayers int) ([]Battle, error) {
	params := url.Values{}
	params.Set("guildId", guildID)
	params.Set("offset", strconv.Itoa(page*c.pageSize))
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("minPlayers", strconv.Itoa(minPlayers))
	params.Set("sort", "recent")

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/battles", params, &raw); err != nil {
		return nil, err
	}

	var battles []Battle
	if err := json.Unmarshal(raw, &battles); err != nil {
		c.logger.WarnContext(ctx, "Battle feed returned a non-list body, treating as no data",
			slog.String("guild_id", guildID),
			slog.Int("page", page),
		)
		return nil, nil
	}
	return battles, nil
}

// GetKillEvents fetches the combined kill-event feed for a set of battle
// reports in one request. A non-list body is treated as no data.
func (c *Client) GetKillEvents(ctx context.Context, battleIDs []int64) ([]KillEvent, error) {
	if len(battleIDs) == 0 {
		return nil, nil
	}

	parts := make([]string, len(battleIDs))
	for i, id := range battleIDs {
		parts[i] = strconv.FormatInt(id, 10)
	}

	var raw json.RawMessage
	if err := c.getJSON(ctx, "/events/battle/"+strings.Join(parts, ","), nil, &raw); err != nil {
		return nil, err
	}

	var events []KillEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		c.logger.WarnContext(ctx, "Kill-event feed returned a non-list body, treating as no data",
			slog.Int("battle_count", len(battleIDs)),
		)
		return nil, nil
	}
	return events, nil
}

// getJSON performs a rate-limited GET and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "battleboard-bot/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("killboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("killboard returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode killboard response: %w", err)
	}
	return nil
}
