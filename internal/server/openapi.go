package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/paaskampf/scoreboard/internal/handler/health"
	"github.com/paaskampf/scoreboard/internal/scoreboard"
	"github.com/paaskampf/scoreboard/internal/views"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type idPath struct {
	ID string `path:"id"`
}

type assignTeamInput struct {
	idPath
	AssignTeamRequest
}

type scoreInput struct {
	idPath
	ScoreRequest
}

type response struct {
	status      int
	body        any
	contentType string
}

func jsonOK(body any) response { return response{status: http.StatusOK, body: body} }
func jsonCreated(body any) response { return response{status: http.StatusCreated, body: body} }
func noContent() response { return response{status: http.StatusNoContent} }
func failure(status int) response {
	return response{status: status, body: ErrorResponse{}}
}

func addOperation(r *openapi3.Reflector, method, path, summary, description string, req any, resps ...response) {
	op, err := r.NewOperationContext(method, path)
	if err != nil {
		return
	}
	op.SetSummary(summary)
	op.SetDescription(description)
	if req != nil {
		op.AddReqStructure(req)
	}
	for _, resp := range resps {
		opts := []openapi.ContentOption{openapi.WithHTTPStatus(resp.status)}
		if resp.contentType != "" {
			opts = append(opts, openapi.WithContentType(resp.contentType))
		}
		op.AddRespStructure(resp.body, opts...)
	}
	_ = r.AddOperation(op)
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Scoreboard API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Live scoreboard for a games weekend. Every /api route except /api/pin and /api/live requires the session cookie set by POST /api/pin.")

	unauthorized := failure(http.StatusUnauthorized)
	stream := response{status: http.StatusOK, contentType: "text/event-stream"}

	addOperation(r, http.MethodGet, "/healthz", "Health check",
		"Returns the health status of backend dependencies.", nil,
		jsonOK(map[string]health.Result{}), response{status: http.StatusServiceUnavailable, body: map[string]health.Result{}})
	addOperation(r, http.MethodGet, "/ws/live", "Live WebSocket",
		"Upgrades to a WebSocket that receives the live board after every change.", nil,
		response{status: http.StatusSwitchingProtocols, contentType: "text/plain"})

	addOperation(r, http.MethodPost, "/api/pin", "Enter PIN",
		"Checks the PIN and sets a session cookie.", PINRequest{},
		noContent(), failure(http.StatusBadRequest), unauthorized)
	addOperation(r, http.MethodGet, "/api/live", "Live board",
		"Public read-only board.", nil, jsonOK(views.Board{}))
	addOperation(r, http.MethodGet, "/api/live/stream", "Live stream",
		"Server-sent events: state (board) and celebrate.", nil, stream)

	addOperation(r, http.MethodGet, "/api/state", "Get state",
		"Returns the cached state with derived rankings and quick score values.", nil,
		jsonOK(StateResponse{}), unauthorized)
	addOperation(r, http.MethodPost, "/api/reload", "Reload",
		"Discards the cache and loads the active weekend from the store.", nil,
		jsonOK(StateResponse{}), failure(http.StatusBadGateway), unauthorized)
	addOperation(r, http.MethodPost, "/api/weekend", "Create weekend",
		"Creates a weekend and makes it the only active one.", NameRequest{},
		jsonCreated(scoreboard.Weekend{}), failure(http.StatusBadRequest), unauthorized)
	addOperation(r, http.MethodPost, "/api/start", "Start scoreboard",
		"Checks that a weekend with at least 2 players is loaded.", nil,
		noContent(), failure(http.StatusBadRequest), failure(http.StatusConflict), unauthorized)
	addOperation(r, http.MethodGet, "/api/stream", "State stream",
		"Server-sent events: state (full state) and celebrate.", nil, stream, unauthorized)

	addOperation(r, http.MethodPost, "/api/players", "Add player",
		"Adds a player; a missing color picks the first unused palette color.", AddRequest{},
		jsonCreated(scoreboard.Player{}), failure(http.StatusBadRequest), failure(http.StatusConflict), unauthorized)
	addOperation(r, http.MethodDelete, "/api/players/{id}", "Remove player", "", idPath{},
		noContent(), unauthorized)
	addOperation(r, http.MethodPut, "/api/players/{id}/team", "Assign team",
		"Sets the player's team, or the event-scoped team when an event is active. An empty team_id unassigns.",
		assignTeamInput{}, noContent(), unauthorized)
	addOperation(r, http.MethodPost, "/api/players/{id}/score", "Score player",
		"Adds points to the player, in the active event when there is one.", scoreInput{},
		noContent(), unauthorized)

	addOperation(r, http.MethodPost, "/api/teams", "Add team",
		"Adds a team to the current selection.", AddRequest{},
		jsonCreated(scoreboard.Team{}), failure(http.StatusBadRequest), failure(http.StatusConflict), unauthorized)
	addOperation(r, http.MethodDelete, "/api/teams/{id}", "Remove team",
		"Deletes the team; its members become unassigned.", idPath{}, noContent(), unauthorized)
	addOperation(r, http.MethodPost, "/api/teams/{id}/score", "Score team",
		"Adds points to every member and to the team.", scoreInput{}, noContent(), unauthorized)

	addOperation(r, http.MethodPost, "/api/events", "Create event",
		"Creates an event with a score row for every current player.", CreateEventRequest{},
		jsonCreated(scoreboard.Event{}), failure(http.StatusBadRequest), failure(http.StatusConflict), unauthorized)
	addOperation(r, http.MethodGet, "/api/events/overview", "Events overview",
		"Top three of every event of the weekend.", nil,
		jsonOK([]views.EventSummary{}), failure(http.StatusBadGateway), unauthorized)
	addOperation(r, http.MethodPut, "/api/events/active", "Select event",
		"Selects an event, or none with an empty event_id.", SetActiveEventRequest{},
		jsonOK(StateResponse{}), failure(http.StatusNotFound), failure(http.StatusConflict), unauthorized)
	addOperation(r, http.MethodPost, "/api/events/active/counts-for-total", "Toggle counts for total", "", nil,
		noContent(), unauthorized)
	addOperation(r, http.MethodPost, "/api/events/active/reverse-scoring", "Toggle reverse scoring", "", nil,
		noContent(), unauthorized)
	addOperation(r, http.MethodDelete, "/api/events/{id}", "Remove event",
		"Deletes the event with its scores and teams.", idPath{}, noContent(), unauthorized)

	addOperation(r, http.MethodPost, "/api/scores/reset", "Reset scores",
		"Zeroes the active event's scores, or every global score without an event.", nil,
		noContent(), unauthorized)

	addOperation(r, http.MethodGet, "/api/tv", "TV layout", "", nil, jsonOK(TVResponse{}), unauthorized)
	addOperation(r, http.MethodGet, "/api/tv/qr.png", "Live view QR code", "", nil,
		response{status: http.StatusOK, contentType: "image/png"}, unauthorized)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
