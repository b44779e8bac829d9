package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trailquest/hunt/internal/catalog"
	"github.com/trailquest/hunt/internal/game"
)

// SeedDemo provisions one demo team per route when the store is empty.
// Idempotent: does nothing if teams already exist. Production hunts provision
// teams out-of-band.
func SeedDemo(ctx context.Context, logger *slog.Logger, store TeamStore, cat *catalog.Catalog) error {
	existing, err := store.ListTeams(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	names := []string{"The Pathfinders", "Compass Rose", "Night Owls", "Trailblazers"}
	for i, routeID := range cat.RouteIDs() {
		t := game.Team{
			Code:    fmt.Sprintf("TEAM%02d", i+1),
			Name:    names[i%len(names)],
			RouteID: routeID,
		}
		if err := store.CreateTeam(ctx, t); err != nil {
			return err
		}
		logger.Info("demo team created", "code", t.Code, "route", routeID)
	}
	return nil
}
