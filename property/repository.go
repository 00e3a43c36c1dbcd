package property

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that the listing does not exist.
var ErrNotFound = errors.New("property: not found")

// Repository handles data access for listings.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (Property, error)
	GetAll(ctx context.Context) ([]Property, error)
	GetByID(ctx context.Context, id string) (Property, error)
	FindByUserID(ctx context.Context, userID string) ([]Property, error)
	FindAllActive(ctx context.Context) ([]Property, error)
	Update(ctx context.Context, id string, params UpdateParams) (Property, error)
	Delete(ctx context.Context, id string) error
	AddImages(ctx context.Context, id string, images []string) (Property, error)
}

const propertyColumns = `p.id, p.user_id, p.title, p.description, p.location, p.price, p.type,
		p.status, p.bedrooms, p.bathrooms, p.area, p.features, p.images, p.created_at, p.updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed listing repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new listing, stamping both timestamps.
func (r *PGRepository) Create(ctx context.Context, params CreateParams) (Property, error) {
	insertSQL := `
		INSERT INTO properties (user_id, title, description, location, price, type,
			status, bedrooms, bathrooms, area, features, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + bareColumns()

	prop, err := scanProperty(r.pool.QueryRow(ctx, insertSQL,
		params.UserID,
		params.Title,
		params.Description,
		encodeLocation(params.Location),
		params.Price,
		params.Type,
		params.Status,
		params.Bedrooms,
		params.Bathrooms,
		params.Area,
		params.Features,
		params.Images,
	))
	if err != nil {
		return Property{}, fmt.Errorf("property: create: %w", err)
	}
	return prop, nil
}

// GetAll returns every listing, newest first.
func (r *PGRepository) GetAll(ctx context.Context) ([]Property, error) {
	query := `
		SELECT ` + bareColumns() + `
		FROM properties p
		ORDER BY p.created_at DESC
	`
	return r.queryMany(ctx, query, false)
}

// GetByID returns one listing with the owner's contact details joined in for
// display in detail views.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Property, error) {
	query := `
		SELECT ` + propertyColumns + `, u.name, u.email, u.phone
		FROM properties p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`

	prop, err := scanPropertyWithOwner(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: get by id: %w", err)
	}
	return prop, nil
}

// FindByUserID returns the owner's listings, newest first.
func (r *PGRepository) FindByUserID(ctx context.Context, userID string) ([]Property, error) {
	query := `
		SELECT ` + propertyColumns + `, u.name, u.email, u.phone
		FROM properties p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("property: find by user id: %w", err)
	}
	defer rows.Close()
	return collect(rows, true)
}

// FindAllActive returns listings still on the market, newest first.
func (r *PGRepository) FindAllActive(ctx context.Context) ([]Property, error) {
	query := `
		SELECT ` + propertyColumns + `, u.name, u.email, u.phone
		FROM properties p
		LEFT JOIN users u ON u.id = p.user_id
		WHERE p.status = $1
		ORDER BY p.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, StatusActive)
	if err != nil {
		return nil, fmt.Errorf("property: find all active: %w", err)
	}
	defer rows.Close()
	return collect(rows, true)
}

// Update replaces the mutable fields and stamps updated_at.
func (r *PGRepository) Update(ctx context.Context, id string, params UpdateParams) (Property, error) {
	updateSQL := `
		UPDATE properties
		SET title = $2,
		    description = $3,
		    location = $4,
		    price = $5,
		    type = $6,
		    status = $7,
		    bedrooms = $8,
		    bathrooms = $9,
		    area = $10,
		    features = $11,
		    images = $12,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bareColumns()

	prop, err := scanProperty(r.pool.QueryRow(ctx, updateSQL,
		id,
		params.Title,
		params.Description,
		encodeLocation(params.Location),
		params.Price,
		params.Type,
		params.Status,
		params.Bedrooms,
		params.Bathrooms,
		params.Area,
		params.Features,
		params.Images,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: update: %w", err)
	}
	return prop, nil
}

// Delete removes a listing.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("property: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImages appends storage paths to the listing's image list. Appending, not
// replacing, so concurrent uploads never drop each other's files.
func (r *PGRepository) AddImages(ctx context.Context, id string, images []string) (Property, error) {
	updateSQL := `
		UPDATE properties
		SET images = array_cat(images, $2),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bareColumns()

	prop, err := scanProperty(r.pool.QueryRow(ctx, updateSQL, id, images))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, ErrNotFound
		}
		return Property{}, fmt.Errorf("property: add images: %w", err)
	}
	return prop, nil
}

func (r *PGRepository) queryMany(ctx context.Context, query string, withOwner bool, args ...any) ([]Property, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("property: query: %w", err)
	}
	defer rows.Close()
	return collect(rows, withOwner)
}

func bareColumns() string {
	return `id, user_id, title, description, location, price, type,
		status, bedrooms, bathrooms, area, features, images, created_at, updated_at`
}

func collect(rows pgx.Rows, withOwner bool) ([]Property, error) {
	props := []Property{}
	for rows.Next() {
		var (
			prop Property
			err  error
		)
		if withOwner {
			prop, err = scanPropertyWithOwner(rows)
		} else {
			prop, err = scanProperty(rows)
		}
		if err != nil {
			return nil, fmt.Errorf("property: scan row: %w", err)
		}
		props = append(props, prop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("property: iterate rows: %w", err)
	}
	return props, nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var (
		prop        Property
		rawLocation string
	)
	err := row.Scan(
		&prop.ID,
		&prop.UserID,
		&prop.Title,
		&prop.Description,
		&rawLocation,
		&prop.Price,
		&prop.Type,
		&prop.Status,
		&prop.Bedrooms,
		&prop.Bathrooms,
		&prop.Area,
		&prop.Features,
		&prop.Images,
		&prop.CreatedAt,
		&prop.UpdatedAt,
	)
	if err != nil {
		return Property{}, err
	}
	finishProperty(&prop, rawLocation)
	return prop, nil
}

func scanPropertyWithOwner(row pgx.Row) (Property, error) {
	var (
		prop        Property
		rawLocation string
	)
	err := row.Scan(
		&prop.ID,
		&prop.UserID,
		&prop.Title,
		&prop.Description,
		&rawLocation,
		&prop.Price,
		&prop.Type,
		&prop.Status,
		&prop.Bedrooms,
		&prop.Bathrooms,
		&prop.Area,
		&prop.Features,
		&prop.Images,
		&prop.CreatedAt,
		&prop.UpdatedAt,
		&prop.OwnerName,
		&prop.OwnerEmail,
		&prop.OwnerPhone,
	)
	if err != nil {
		return Property{}, err
	}
	finishProperty(&prop, rawLocation)
	return prop, nil
}

// finishProperty decodes the location shim and keeps the collection fields
// non-nil so consumers never branch on null.
func finishProperty(prop *Property, rawLocation string) {
	prop.Location = decodeLocation(rawLocation)
	if prop.Features == nil {
		prop.Features = []string{}
	}
	if prop.Images == nil {
		prop.Images = []string{}
	}
}
