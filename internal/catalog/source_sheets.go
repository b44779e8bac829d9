package catalog

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// Tab names in the content spreadsheet.
const (
	sheetLocations = "Locations"
	sheetRiddles   = "Riddles"
	sheetRoutes    = "Routes"
)

// SheetsSource loads the catalog from a Google Sheets spreadsheet maintained
// by the hunt organizers. Layout: a Locations tab (locationID, locationName,
// qrIdentifier), a Riddles tab (locationID, riddleText) and a Routes tab
// (routeName followed by one column per stop). Row 1 of each tab is a header.
type SheetsSource struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

func NewSheetsSource(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsSource, error) {
	srv, err := sheetsv4.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheetsv4.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsSource{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsSource) Load(ctx context.Context) (*Catalog, error) {
	locations, err := s.readAll(ctx, sheetLocations)
	if err != nil {
		return nil, err
	}
	riddles, err := s.readAll(ctx, sheetRiddles)
	if err != nil {
		return nil, err
	}
	routes, err := s.readAll(ctx, sheetRoutes)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Checkpoint)
	var order []string
	for _, row := range locations {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		byID[id] = &Checkpoint{
			ID:        id,
			Name:      cell(row, 1),
			ScanToken: cell(row, 2),
		}
		order = append(order, id)
	}

	for _, row := range riddles {
		id, text := cell(row, 0), cell(row, 1)
		if cp, ok := byID[id]; ok && text != "" {
			cp.Clues = append(cp.Clues, text)
		}
	}

	var checkpoints []Checkpoint
	for _, id := range order {
		checkpoints = append(checkpoints, *byID[id])
	}

	var routeList []Route
	for _, row := range routes {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		rt := Route{ID: id}
		for i := 1; i < len(row); i++ {
			if stop := cell(row, i); stop != "" {
				rt.Checkpoints = append(rt.Checkpoints, stop)
			}
		}
		routeList = append(routeList, rt)
	}

	return New(checkpoints, routeList)
}

// readAll fetches a whole tab, skipping the header row.
func (s *SheetsSource) readAll(ctx context.Context, sheet string) ([][]interface{}, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, sheet+"!A:Z").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(resp.Values) <= 1 {
		return nil, nil
	}
	return resp.Values[1:], nil
}

func cell(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}
