package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexander-bruun/placeholders/utils"
)

// Variant is a generated rendition of an asset, keyed by variant name.
type Variant struct {
	ID        int64     `json:"id"`
	AssetID   int64     `json:"asset_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Quality   int       `json:"quality"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

const variantColumns = `id, asset_id, name, path, format, quality, width, height, size, created_at`

// SaveVariant inserts a variant or replaces the existing one with the same
// asset and name, and sets its ID
func SaveVariant(v *Variant) error {
	start := time.Now()
	defer utils.LogDuration("SaveVariant", start, v.AssetID, v.Name)

	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	err := db.QueryRow(`INSERT INTO variants (asset_id, name, path, format, quality, width, height, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (asset_id, name) DO UPDATE SET
			path = excluded.path,
			format = excluded.format,
			quality = excluded.quality,
			width = excluded.width,
			height = excluded.height,
			size = excluded.size,
			created_at = excluded.created_at
		RETURNING id`,
		v.AssetID, v.Name, v.Path, v.Format, v.Quality, v.Width, v.Height, v.Size, v.CreatedAt.Unix()).Scan(&v.ID)
	if err != nil {
		return fmt.Errorf("save variant: %w", err)
	}
	return nil
}

func scanVariant(row interface{ Scan(...any) error }) (*Variant, error) {
	var v Variant
	var createdAt int64
	if err := row.Scan(&v.ID, &v.AssetID, &v.Name, &v.Path, &v.Format, &v.Quality, &v.Width, &v.Height, &v.Size, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	v.CreatedAt = unixTime(createdAt)
	return &v, nil
}

// GetVariant retrieves a variant of an asset by name
func GetVariant(assetID int64, name string) (*Variant, error) {
	start := time.Now()
	defer utils.LogDuration("GetVariant", start, assetID, name)

	return scanVariant(db.QueryRow(`SELECT `+variantColumns+` FROM variants WHERE asset_id = ? AND name = ?`, assetID, name))
}

// ListVariants returns the variants of an asset ordered by name
func ListVariants(assetID int64) ([]Variant, error) {
	start := time.Now()
	defer utils.LogDuration("ListVariants", start, assetID)

	rows, err := db.Query(`SELECT `+variantColumns+` FROM variants WHERE asset_id = ? ORDER BY name`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, *v)
	}
	return variants, rows.Err()
}

// DeleteVariantsForAsset removes every variant record of an asset
func DeleteVariantsForAsset(assetID int64) (int64, error) {
	result, err := db.Exec(`DELETE FROM variants WHERE asset_id = ?`, assetID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// CountVariants returns the number of generated variants
func CountVariants() (int, error) {
	return CountRecords(`SELECT COUNT(*) FROM variants`)
}
