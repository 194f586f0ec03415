package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/forkful/dealfeed/internal/deal"
	"github.com/forkful/dealfeed/internal/geo"
)

// DealStore is a PostgreSQL implementation of deal.Repository.
type DealStore struct {
	db *sql.DB
}

// NewDealStore creates a Postgres-backed deal repository.
func NewDealStore(db *sql.DB) *DealStore {
	return &DealStore{db: db}
}

const dealColumns = "id, venue_id, author_id, cuisine_id, title, lat, lng, views, created_at, expires_at"

// Create inserts a new deal, generating a UUID if none is set.
func (s *DealStore) Create(ctx context.Context, d *deal.Deal) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}

	var lat, lng sql.NullFloat64
	if d.Location != nil {
		lat = sql.NullFloat64{Float64: d.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: d.Location.Lng, Valid: true}
	}
	var cuisine sql.NullString
	if d.CuisineID != nil {
		cuisine = sql.NullString{String: *d.CuisineID, Valid: true}
	}
	var expires sql.NullTime
	if d.ExpiresAt != nil {
		expires = sql.NullTime{Time: *d.ExpiresAt, Valid: true}
	}

	query := `
		INSERT INTO deals (id, venue_id, author_id, cuisine_id, title, lat, lng, views, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, COALESCE($8, NOW()), $9)
		RETURNING created_at`

	var createdAt sql.NullTime
	if !d.CreatedAt.IsZero() {
		createdAt = sql.NullTime{Time: d.CreatedAt, Valid: true}
	}

	err := s.db.QueryRowContext(ctx, query,
		d.ID, d.VenueID, d.AuthorID, cuisine, d.Title, lat, lng, createdAt, expires,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting deal: %w", err)
	}
	return nil
}

// GetByID retrieves a deal by its UUID.
func (s *DealStore) GetByID(ctx context.Context, id string) (*deal.Deal, error) {
	query := "SELECT " + dealColumns + " FROM deals WHERE id = $1"

	d, err := scanDeal(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, deal.ErrDealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying deal %s: %w", id, err)
	}
	return d, nil
}

// FindNearby returns unexpired deals within radiusMiles of p, using a
// haversine great-circle filter evaluated in SQL. Deals without a stored
// location never match.
func (s *DealStore) FindNearby(ctx context.Context, p geo.Point, radiusMiles float64) ([]*deal.Deal, error) {
	query := `
		SELECT ` + dealColumns + `
		FROM deals
		WHERE (expires_at IS NULL OR expires_at > NOW())
		  AND lat IS NOT NULL AND lng IS NOT NULL
		  AND 2 * 3958.8 * asin(sqrt(
		        pow(sin(radians(lat - $1) / 2), 2) +
		        cos(radians($1)) * cos(radians(lat)) *
		        pow(sin(radians(lng - $2) / 2), 2)
		      )) <= $3`

	rows, err := s.db.QueryContext(ctx, query, p.Lat, p.Lng, radiusMiles)
	if err != nil {
		return nil, fmt.Errorf("querying nearby deals: %w", err)
	}
	defer rows.Close()

	var result []*deal.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning deal row: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating deal rows: %w", err)
	}
	return result, nil
}

// IncrementViews bumps the view counter for a deal.
func (s *DealStore) IncrementViews(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE deals SET views = views + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("incrementing views for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return deal.ErrDealNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDeal reads one deals row, mapping nullable columns back to pointers.
func scanDeal(row rowScanner) (*deal.Deal, error) {
	var d deal.Deal
	var cuisine sql.NullString
	var lat, lng sql.NullFloat64
	var expires sql.NullTime

	err := row.Scan(&d.ID, &d.VenueID, &d.AuthorID, &cuisine, &d.Title,
		&lat, &lng, &d.Views, &d.CreatedAt, &expires)
	if err != nil {
		return nil, err
	}

	if cuisine.Valid {
		d.CuisineID = &cuisine.String
	}
	if lat.Valid && lng.Valid {
		d.Location = &geo.Point{Lat: lat.Float64, Lng: lng.Float64}
	}
	if expires.Valid {
		d.ExpiresAt = &expires.Time
	}
	return &d, nil
}
