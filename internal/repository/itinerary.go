package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deppfellow/kennywood-api/internal/model/itinerary"
	"github.com/deppfellow/kennywood-api/internal/sqlerr"
)

const itineraryTable = "itinerary"

// itineraryColumns reads from a row aliased i joined to attraction a and
// park_area pa. It must stay in step with scanItinerary.
const itineraryColumns = `
	i.id, i.starttime, i.customer_id, i.created_at, i.updated_at,
	a.id, a.name,
	pa.id, pa.name, pa.theme`

const itineraryJoins = `
	JOIN attraction a ON a.id = i.attraction_id
	JOIN park_area pa ON pa.id = a.area_id`

type ItineraryRepository struct {
	pool *pgxpool.Pool
}

func NewItineraryRepository(pool *pgxpool.Pool) *ItineraryRepository {
	return &ItineraryRepository{pool: pool}
}

func scanItinerary(row pgx.Row) (itinerary.Itinerary, error) {
	var it itinerary.Itinerary
	err := row.Scan(
		&it.ID, &it.StartTime, &it.CustomerID, &it.CreatedAt, &it.UpdatedAt,
		&it.Attraction.ID, &it.Attraction.Name,
		&it.Attraction.Area.ID, &it.Attraction.Area.Name, &it.Attraction.Area.Theme,
	)
	return it, err
}

func (r *ItineraryRepository) GetByID(ctx context.Context, id int64) (*itinerary.Itinerary, error) {
	stmt := `SELECT ` + itineraryColumns + ` FROM itinerary i ` + itineraryJoins + ` WHERE i.id = @id`

	it, err := scanItinerary(r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{"id": id}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound(itineraryTable, id, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get itinerary %d: %w", id, err)
	}

	return &it, nil
}

// List returns items ordered by id, narrowed to one customer when the filter
// names one.
func (r *ItineraryRepository) List(ctx context.Context, filter itinerary.Filter) ([]itinerary.Itinerary, error) {
	stmt := `SELECT ` + itineraryColumns + ` FROM itinerary i ` + itineraryJoins
	args := pgx.NamedArgs{}

	if filter.CustomerID != nil {
		stmt += ` WHERE i.customer_id = @customer_id`
		args["customer_id"] = *filter.CustomerID
	}
	stmt += ` ORDER BY i.id`

	rows, err := r.pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (itinerary.Itinerary, error) {
		return scanItinerary(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect itineraries: %w", err)
	}

	return items, nil
}

// Insert stores it and returns the new row with its attraction filled in.
// An unknown customer or attraction surfaces as a foreign key violation.
func (r *ItineraryRepository) Insert(ctx context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error) {
	stmt := `
		WITH i AS (
			INSERT INTO itinerary (starttime, customer_id, attraction_id)
			VALUES (@starttime, @customer_id, @attraction_id)
			RETURNING *
		)
		SELECT ` + itineraryColumns + ` FROM i ` + itineraryJoins

	created, err := scanItinerary(r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"starttime":     it.StartTime,
		"customer_id":   it.CustomerID,
		"attraction_id": it.Attraction.ID,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to insert itinerary: %w", err)
	}

	return &created, nil
}

// Save writes the start time of an existing item. The attraction and owner
// are fixed once the item is created.
func (r *ItineraryRepository) Save(ctx context.Context, it *itinerary.Itinerary) (*itinerary.Itinerary, error) {
	stmt := `
		WITH i AS (
			UPDATE itinerary
			SET starttime = @starttime, updated_at = now()
			WHERE id = @id
			RETURNING *
		)
		SELECT ` + itineraryColumns + ` FROM i ` + itineraryJoins

	saved, err := scanItinerary(r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"id":        it.ID,
		"starttime": it.StartTime,
	}))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sqlerr.NotFound(itineraryTable, it.ID, itinerary.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to save itinerary %d: %w", it.ID, err)
	}

	return &saved, nil
}

func (r *ItineraryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM itinerary WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete itinerary %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound(itineraryTable, id, itinerary.ErrNotFound)
	}
	return nil
}
