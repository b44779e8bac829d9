package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/trailquest/hunt/internal/game"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "TrailQuest Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the TrailQuest scavenger hunt.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/teams/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/teams/login")
	postLogin.SetSummary("Team login")
	postLogin.SetDescription("Authenticate a team by its code. Returns the full team snapshot.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(game.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postLogin)

	// POST /api/teams/{code}/selfie
	postSelfie, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{code}/selfie")
	postSelfie.SetSummary("Submit selfie")
	postSelfie.SetDescription("Submit the team photo for operator verification. Conflicts while one is pending.")
	postSelfie.AddReqStructure(SelfieRequest{})
	postSelfie.AddRespStructure(game.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	postSelfie.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postSelfie.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postSelfie)

	// POST /api/teams/{code}/scan
	postScan, _ := r.NewOperationContext(http.MethodPost, "/api/teams/{code}/scan")
	postScan.SetSummary("Scan a checkpoint")
	postScan.SetDescription("Validate a scanned checkpoint token. Advances the team on a match; a wrong token is a rejected outcome, not an error.")
	postScan.AddReqStructure(ScanRequest{})
	postScan.AddRespStructure(ScanResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postScan.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postScan)

	// GET /api/teams/{code}/events
	getTeamEvents, _ := r.NewOperationContext(http.MethodGet, "/api/teams/{code}/events")
	getTeamEvents.SetSummary("Team event stream")
	getTeamEvents.SetDescription("Server-Sent Events stream scoped to one team.")
	getTeamEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getTeamEvents)

	// POST /api/operator/login
	postOpLogin, _ := r.NewOperationContext(http.MethodPost, "/api/operator/login")
	postOpLogin.SetSummary("Operator login")
	postOpLogin.SetDescription("Authenticate with the operator password. Sets operator_session cookie.")
	postOpLogin.AddReqStructure(OperatorLoginRequest{})
	postOpLogin.AddRespStructure(OperatorMeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postOpLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postOpLogin)

	// GET /api/operator/teams
	getTeams, _ := r.NewOperationContext(http.MethodGet, "/api/operator/teams")
	getTeams.SetSummary("List all teams")
	getTeams.SetDescription("Returns every team snapshot for the operator console.")
	getTeams.AddRespStructure([]game.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	getTeams.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getTeams)

	// POST /api/operator/teams/{code}/verify
	postVerify, _ := r.NewOperationContext(http.MethodPost, "/api/operator/teams/{code}/verify")
	postVerify.SetSummary("Decide selfie verification")
	postVerify.SetDescription("Approve or reject a team's pending selfie. Approval starts the team's hunt.")
	postVerify.AddReqStructure(VerifyRequest{})
	postVerify.AddRespStructure(game.Team{}, openapi.WithHTTPStatus(http.StatusOK))
	postVerify.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postVerify)

	// GET /api/operator/events
	getOpEvents, _ := r.NewOperationContext(http.MethodGet, "/api/operator/events")
	getOpEvents.SetSummary("Operator event stream")
	getOpEvents.SetDescription("Server-Sent Events stream of all team updates and the verification queue.")
	getOpEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getOpEvents)

	// POST /api/operator/catalog/reload
	postReload, _ := r.NewOperationContext(http.MethodPost, "/api/operator/catalog/reload")
	postReload.SetSummary("Reload catalog")
	postReload.SetDescription("Re-reads routes and checkpoints from the content source and swaps the catalog atomically.")
	postReload.AddRespStructure(ReloadResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postReload.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(postReload)

	// GET /api/operator/checkpoints/{id}/qrcode
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/operator/checkpoints/{id}/qrcode")
	getQR.SetSummary("Checkpoint QR code")
	getQR.SetDescription("Renders the checkpoint's scan token as a printable QR PNG.")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("image/png"))
	getQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getQR)

	// GET /ws/operator
	getWS, _ := r.NewOperationContext(http.MethodGet, "/ws/operator")
	getWS.SetSummary("Operator WebSocket feed")
	getWS.SetDescription("Upgrades to a WebSocket streaming the operator broadcast events.")
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		json.NewEncoder(w).Encode(spec)
	}
}
