package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// CatalogRepository persists the per-owner [models.Catalog] anchor.
//
// Catalogs are created lazily on the first pull and never deleted.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const catalogColumns = "id, user_id, should_update, created_at, updated_at"

// Create inserts a new catalog with a generated ID
func (r *CatalogRepository) Create(catalog *models.Catalog) error {
	id := shared.GenerateID()
	catalog.SetID(id)

	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO catalogs (id, user_id, should_update, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, id, catalog.UserID(), catalog.ShouldUpdate(), catalog.CreatedAt(), catalog.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert catalog: %w", err)
	}

	return nil
}

// Get retrieves a catalog by ID
func (r *CatalogRepository) Get(id string) (*models.Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalogs WHERE id = ?`
	return scanCatalog(r.db.QueryRow(query, id).Scan)
}

// GetByUser retrieves the catalog belonging to the given owner
func (r *CatalogRepository) GetByUser(userID string) (*models.Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalogs WHERE user_id = ?`
	return scanCatalog(r.db.QueryRow(query, userID).Scan)
}

// GetOrCreate retrieves the owner's catalog, creating it when absent.
func (r *CatalogRepository) GetOrCreate(userID string) (*models.Catalog, error) {
	catalog, err := r.GetByUser(userID)
	if err == nil {
		return catalog, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	catalog = models.NewCatalog(userID)
	if err := r.Create(catalog); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Update modifies an existing catalog in the database
func (r *CatalogRepository) Update(catalog *models.Catalog) error {
	if err := catalog.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	catalog.SetUpdatedAt(now)

	query := `
		UPDATE catalogs
		SET should_update = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, catalog.ShouldUpdate(), now, catalog.ID())
	if err != nil {
		return fmt.Errorf("failed to update catalog: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("catalog not found: %s", catalog.ID())
	}

	return nil
}

// Delete is not supported: catalogs are never deleted.
func (r *CatalogRepository) Delete(id string) error {
	return fmt.Errorf("%w: catalogs are never deleted", shared.ErrNotImplemented)
}

// List retrieves all catalogs matching the given criteria.
//
// Supported criteria: should_update (bool).
func (r *CatalogRepository) List(criteria map[string]any) ([]*models.Catalog, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalogs WHERE 1=1`

	args := []any{}

	if shouldUpdate, ok := criteria["should_update"].(bool); ok {
		query += " AND should_update = ?"
		args = append(args, shouldUpdate)
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogs: %w", err)
	}
	defer rows.Close()

	var catalogs []*models.Catalog
	for rows.Next() {
		catalog, err := scanCatalog(rows.Scan)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, catalog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return catalogs, nil
}

func scanCatalog(scan func(...any) error) (*models.Catalog, error) {
	var (
		id           string
		userID       string
		shouldUpdate bool
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := scan(&id, &userID, &shouldUpdate, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog: %w", err)
	}

	catalog := models.NewCatalog(userID)
	catalog.SetID(id)
	catalog.SetShouldUpdate(shouldUpdate)
	catalog.SetUpdatedAt(updatedAt)

	return catalog, nil
}
