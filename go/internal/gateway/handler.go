package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcdev12/auctionroom/go/internal/auction"
	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/mcdev12/auctionroom/go/internal/leagues"
	"github.com/mcdev12/auctionroom/go/internal/models"
	"github.com/mcdev12/auctionroom/go/internal/player"
	"github.com/mcdev12/auctionroom/go/internal/session"
	"github.com/rs/zerolog/log"
)

const maxUploadSize = 10 << 20

var errBadRequest = errors.New("bad request")

// LeagueCatalog lists leagues and builds fresh team registries
type LeagueCatalog interface {
	ListLeagues() []leagues.LeagueSummary
	TeamRegistry(code models.League) (models.LeagueConfig, []models.Team, error)
}

// PlayerCatalog supplies the default pool and parses uploaded sheets
type PlayerCatalog interface {
	DefaultPool() []models.Player
	ImportPool(r io.Reader, filename string) ([]models.Player, error)
}

// Sessions is the session manager surface the HTTP API drives
type Sessions interface {
	Create(req session.CreateRequest) (*session.Session, error)
	Get(id string) (*session.Session, error)
	Start(id string) error
	Bid(id, teamID string) (models.Bid, error)
	Close(id string) error
	List() []session.Info
}

// HealthFunc reports the state of the event outbox
type HealthFunc func() outbox.HealthStatus

// Handler serves the auction HTTP and WebSocket API
type Handler struct {
	leagues  LeagueCatalog
	players  PlayerCatalog
	sessions Sessions
	conns    *ConnectionManager
	health   HealthFunc
}

// NewHandler creates the gateway handler. health may be nil.
func NewHandler(leagueCatalog LeagueCatalog, players PlayerCatalog, sessions Sessions, conns *ConnectionManager, health HealthFunc) *Handler {
	return &Handler{
		leagues:  leagueCatalog,
		players:  players,
		sessions: sessions,
		conns:    conns,
		health:   health,
	}
}

// Routes builds the chi router for every gateway endpoint
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/leagues", h.HandleListLeagues)
		r.Get("/leagues/{league}/teams", h.HandleGetTeams)

		r.Get("/players/template", h.HandleTemplate)
		r.Get("/players/search", h.HandleSearchPlayers)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.HandleListSessions)
			r.Post("/", h.HandleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", h.HandleCloseSession)
				r.Post("/start", h.HandleStartSession)
				r.Post("/bids", h.HandlePlaceBid)
				r.Get("/state", h.HandleGetState)
				r.Get("/squads", h.HandleGetSquads)
			})
		})
	})

	r.Get("/ws/sessions/{id}", h.HandleSessionConnection)
	return r
}

// HandleHealth handles GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":      "ok",
		"sessions":    len(h.sessions.List()),
		"connections": h.conns.ConnectionCount(""),
	}
	status := http.StatusOK
	if h.health != nil {
		outboxHealth := h.health()
		resp["outbox"] = outboxHealth
		if !outboxHealth.Healthy {
			resp["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// HandleListLeagues handles GET /api/leagues
func (h *Handler) HandleListLeagues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.leagues.ListLeagues())
}

// HandleGetTeams handles GET /api/leagues/{league}/teams
func (h *Handler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	code := models.League(strings.ToUpper(chi.URLParam(r, "league")))
	league, teams, err := h.leagues.TeamRegistry(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teamsResponse{League: league, Teams: teams})
}

// HandleTemplate handles GET /api/players/template?format=csv|xlsx
func (h *Handler) HandleTemplate(w http.ResponseWriter, r *http.Request) {
	format := player.Format(strings.ToLower(r.URL.Query().Get("format")))
	if format == "" {
		format = player.FormatCSV
	}

	var contentType string
	switch format {
	case player.FormatCSV:
		contentType = "text/csv"
	case player.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		writeError(w, fmt.Errorf("%w: %s", player.ErrUnsupportedFormat, format))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=players_template.%s", format))
	if err := player.WriteTemplate(w, format); err != nil {
		log.Error().Err(err).Str("format", string(format)).Msg("failed to write player template")
	}
}

// HandleSearchPlayers handles GET /api/players/search?q=
func (h *Handler) HandleSearchPlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, player.Search(h.players.DefaultPool(), r.URL.Query().Get("q")))
}

// HandleListSessions handles GET /api/sessions
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.List())
}

// HandleCreateSession handles POST /api/sessions. A multipart body may carry a
// "players" CSV or XLSX file that replaces the default pool.
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseCreateRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s, err := h.sessions.Create(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.Info())
}

func (h *Handler) parseCreateRequest(r *http.Request) (session.CreateRequest, error) {
	var body createSessionRequest

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadSize)).Decode(&body); err != nil {
			return session.CreateRequest{}, fmt.Errorf("%w: invalid JSON body", errBadRequest)
		}
		return session.CreateRequest{
			League:      models.League(strings.ToUpper(string(body.League))),
			HumanTeamID: body.HumanTeamID,
		}, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return session.CreateRequest{}, fmt.Errorf("%w: invalid multipart body", errBadRequest)
	}
	req := session.CreateRequest{
		League:      models.League(strings.ToUpper(r.FormValue("league"))),
		HumanTeamID: r.FormValue("human_team_id"),
	}

	file, header, err := r.FormFile("players")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return session.CreateRequest{}, fmt.Errorf("%w: unreadable players file", errBadRequest)
	}
	defer file.Close()

	pool, err := h.players.ImportPool(file, header.Filename)
	if err != nil {
		return session.CreateRequest{}, err
	}
	req.Pool = pool
	return req, nil
}

// HandleStartSession handles POST /api/sessions/{id}/start
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Start(id); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, s.Engine.Snapshot())
}

// HandlePlaceBid handles POST /api/sessions/{id}/bids. An empty team_id bids for the human team.
func (h *Handler) HandlePlaceBid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.sessions.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}

	var body bidRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, fmt.Errorf("%w: invalid JSON body", errBadRequest))
			return
		}
	}
	if body.TeamID == "" {
		body.TeamID = s.HumanTeamID
	}

	bid, err := h.sessions.Bid(id, body.TeamID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

// HandleGetState handles GET /api/sessions/{id}/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Snapshot())
}

// HandleGetSquads handles GET /api/sessions/{id}/squads
func (h *Handler) HandleGetSquads(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Engine.Squads())
}

// HandleCloseSession handles DELETE /api/sessions/{id}
func (h *Handler) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(id); err != nil {
		writeError(w, err)
		return
	}
	h.conns.CloseSession(id)
	w.WriteHeader(http.StatusNoContent)
}

// HandleSessionConnection handles GET /ws/sessions/{id}?team_id=
func (h *Handler) HandleSessionConnection(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	teamID := r.URL.Query().Get("team_id")
	if teamID == "" {
		teamID = s.HumanTeamID
	}

	// The upgrader has already written an HTTP error when this fails
	if err := h.conns.UpgradeConnection(w, r, s.ID, teamID, s.Engine); err != nil {
		log.Error().
			Err(err).
			Str("session_id", s.ID).
			Str("team_id", teamID).
			Msg("failed to upgrade WebSocket connection")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, leagues.ErrLeagueNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, auction.ErrHumanTeamNotFound),
		errors.Is(err, player.ErrEmptyPool),
		errors.Is(err, player.ErrUnsupportedFormat),
		errors.Is(err, player.ErrMissingHeader):
		return http.StatusBadRequest
	case errors.Is(err, auction.ErrBidRejected),
		errors.Is(err, auction.ErrAlreadyStarted),
		errors.Is(err, auction.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrManagerShutdown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
