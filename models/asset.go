package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexander-bruun/placeholders/utils"
)

// Asset is a managed source image.
type Asset struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Path      string    `json:"path"`
	MimeType  string    `json:"mime_type"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

const assetColumns = `id, name, hash, path, mime_type, format, width, height, size, created_at`

// CreateAsset inserts a new asset and sets its ID
func CreateAsset(a *Asset) error {
	start := time.Now()
	defer utils.LogDuration("CreateAsset", start, a.Name)

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	result, err := db.Exec(`INSERT INTO assets (name, hash, path, mime_type, format, width, height, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Hash, a.Path, a.MimeType, a.Format, a.Width, a.Height, a.Size, a.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("asset id: %w", err)
	}
	a.ID = id
	return nil
}

func scanAsset(row interface{ Scan(...any) error }) (*Asset, error) {
	var a Asset
	var createdAt int64
	if err := row.Scan(&a.ID, &a.Name, &a.Hash, &a.Path, &a.MimeType, &a.Format, &a.Width, &a.Height, &a.Size, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	a.CreatedAt = unixTime(createdAt)
	return &a, nil
}

// GetAsset retrieves an asset by ID
func GetAsset(id int64) (*Asset, error) {
	start := time.Now()
	defer utils.LogDuration("GetAsset", start, id)

	return scanAsset(db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id))
}

// GetAssetByHash retrieves an asset by content hash
func GetAssetByHash(hash string) (*Asset, error) {
	start := time.Now()
	defer utils.LogDuration("GetAssetByHash", start, hash)

	return scanAsset(db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE hash = ?`, hash))
}

// ListAssets returns all assets ordered by ID
func ListAssets() ([]Asset, error) {
	start := time.Now()
	defer utils.LogDuration("ListAssets", start)

	rows, err := db.Query(`SELECT ` + assetColumns + ` FROM assets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// DeleteAsset removes an asset and its variant records
func DeleteAsset(id int64) error {
	start := time.Now()
	defer utils.LogDuration("DeleteAsset", start, id)

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM variants WHERE asset_id = ?`, id); err != nil {
		return fmt.Errorf("delete variants: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CountAssets returns the number of registered assets
func CountAssets() (int, error) {
	return CountRecords(`SELECT COUNT(*) FROM assets`)
}
