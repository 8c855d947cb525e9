package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	battleservice "github.com/Round-Table-Club/battleboard-bot/app/modules/battle/application"
	guilddb "github.com/Round-Table-Club/battleboard-bot/app/modules/guild/infrastructure/repositories"
)

// Router builds the admin HTTP API: guild configuration, manual sync and
// reconcile triggers, health, and metrics.
func (app *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", app.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.Obs.Registry, promhttp.HandlerOpts{}))

	r.Route("/guilds/{guildID}", func(r chi.Router) {
		r.Get("/config", app.handleGetGuildConfig)
		r.Put("/config", app.handleUpsertGuildConfig)
		r.Post("/sync-enabled", app.handleSetSyncEnabled)
		r.Get("/battles/count", app.handleBattleCount)
	})

	r.Post("/admin/sync", app.handleSync)
	r.Post("/admin/reconcile", app.handleReconcile)

	return r
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := app.db.GetDB().PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *App) handleGetGuildConfig(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	result, err := app.GuildModule.Service.GetConfig(r.Context(), guildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Failure != nil {
		writeJSON(w, http.StatusNotFound, result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

type guildConfigRequest struct {
	KillboardGuildID string `json:"killboard_guild_id"`
	BattleChannelID  string `json:"battle_channel_id"`
	SyncEnabled      bool   `json:"sync_enabled"`
	MinPlayers       int    `json:"min_players"`
}

func (app *App) handleUpsertGuildConfig(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	var req guildConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := app.GuildModule.Service.UpsertConfig(r.Context(), &guilddb.GuildConfig{
		GuildID:          guildID,
		KillboardGuildID: req.KillboardGuildID,
		BattleChannelID:  req.BattleChannelID,
		SyncEnabled:      req.SyncEnabled,
		MinPlayers:       req.MinPlayers,
		IsActive:         true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Failure != nil {
		writeJSON(w, http.StatusBadRequest, result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

func (app *App) handleSetSyncEnabled(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := app.GuildModule.Service.SetSyncEnabled(r.Context(), guildID, req.Enabled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result.Failure != nil {
		writeJSON(w, http.StatusBadRequest, result.Failure)
		return
	}
	writeJSON(w, http.StatusOK, result.Success)
}

type syncRequest struct {
	GuildID string `json:"guild_id"`
	// Date accepts free-form text like "yesterday" or "august 5".
	Date string `json:"date"`
}

func (app *App) handleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	opts := battleservice.SyncOptions{
		Mode:    battleservice.SyncModeSinceLatest,
		GuildID: req.GuildID,
	}

	if req.Date != "" {
		day, ok := parseDay(req.Date)
		if !ok {
			writeError(w, http.StatusBadRequest, "unrecognized date")
			return
		}
		opts.Mode = battleservice.SyncModeTargetDay
		opts.TargetDay = day
	}

	summary := app.BattleModule.Service.SyncBattles(r.Context(), opts)
	app.Obs.Logger.InfoContext(r.Context(), "Manual sync completed",
		slog.Int("registered", summary.BattlesRegistered),
		slog.Int("errors", summary.Errors),
	)
	writeJSON(w, http.StatusOK, summary)
}

func (app *App) handleBattleCount(w http.ResponseWriter, r *http.Request) {
	guildID := chi.URLParam(r, "guildID")

	count, err := app.BattleModule.Repo.CountForGuild(r.Context(), guildID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (app *App) handleReconcile(w http.ResponseWriter, r *http.Request) {
	summary := app.BattleModule.Service.ReconcilePending(r.Context())
	writeJSON(w, http.StatusOK, summary)
}

// parseDay resolves natural-language dates against the current time.
func parseDay(text string) (time.Time, bool) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	result, err := w.Parse(text, time.Now())
	if err != nil || result == nil {
		return time.Time{}, false
	}
	return result.Time, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
