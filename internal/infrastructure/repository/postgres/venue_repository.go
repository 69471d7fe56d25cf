package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type VenueRepository struct {
	db *sqlx.DB
}

func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	query, args, err := qb.Select("*").From("venues").
		Where(
			qb.Eq("id", venueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return venue.Venue{}, false, fmt.Errorf("build get venue by id query: %w", err)
	}

	var row venueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return venue.Venue{}, false, nil
		}
		return venue.Venue{}, false, fmt.Errorf("get venue by id: %w", err)
	}

	return venueFromRow(row), true, nil
}

func (r *VenueRepository) ListByLeague(ctx context.Context, leagueID string) ([]venue.Venue, error) {
	query, args, err := qb.Select("*").From("venues").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select venues by league query: %w", err)
	}

	var rows []venueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select venues by league: %w", err)
	}

	out := make([]venue.Venue, 0, len(rows))
	for _, row := range rows {
		out = append(out, venueFromRow(row))
	}
	return out, nil
}

func venueFromRow(row venueTableModel) venue.Venue {
	return venue.Venue{
		ID:       row.ID,
		LeagueID: row.LeagueID,
		Name:     row.Name,
		Address:  row.Address.String,
		Notes:    row.Notes.String,
	}
}
