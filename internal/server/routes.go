package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("TrailQuest Hunt API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB, deps.Redis))

	// Team routes — authenticated by knowing the team code, like the paper
	// hunt sheet it replaces.
	r.Route("/api/teams", func(r chi.Router) {
		r.Post("/login", handleLogin(deps.Store))
		r.Post("/{code}/selfie", handleSelfieSubmit(deps.Store, deps.Broker))
		r.Post("/{code}/scan", handleScan(deps.Store, deps.Engine, deps.Catalog, deps.Broker))
		r.Get("/{code}/events", handleTeamEvents(deps.Store, deps.Broker))
	})

	// Operator console.
	r.Route("/api/operator", func(r chi.Router) {
		r.Post("/login", handleOperatorLogin(deps.Store, deps.OperatorPasswordHash))
		r.Post("/logout", handleOperatorLogout(deps.Store))

		r.Group(func(r chi.Router) {
			r.Use(operatorAuthMiddleware(deps.Store, deps.OperatorPasswordHash))
			r.Get("/me", handleOperatorMe())
			r.Get("/teams", handleListTeams(deps.Store))
			r.Post("/teams/{code}/verify", handleVerify(deps.Store, deps.Broker, deps.Catalog))
			r.Get("/events", handleOperatorEvents(deps.Broker))
			r.Post("/catalog/reload", handleCatalogReload(logger, deps.Source, deps.Catalog))
			r.Get("/checkpoints/{id}/qrcode", handleCheckpointQR(deps.Catalog))
		})
	})

	r.With(operatorAuthMiddleware(deps.Store, deps.OperatorPasswordHash)).
		Get("/ws/operator", handleOperatorWS(logger, deps.Broker))
}
