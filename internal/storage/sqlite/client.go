package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ecodex/backend/internal/storage/models"
	"github.com/ecodex/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS species (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		slug TEXT UNIQUE NOT NULL,
		common_name TEXT NOT NULL,
		common_name_en TEXT,
		scientific_name TEXT,
		emoji TEXT,
		status TEXT,
		tip TEXT,
		habitat TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_species_slug ON species(slug);

	CREATE TABLE IF NOT EXISTS species_alias (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT UNIQUE NOT NULL,
		species_id INTEGER NOT NULL,
		FOREIGN KEY (species_id) REFERENCES species(id) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_alias_label ON species_alias(label);
	CREATE INDEX IF NOT EXISTS idx_alias_species ON species_alias(species_id);

	CREATE TABLE IF NOT EXISTS observations (
		id TEXT PRIMARY KEY,
		species_id INTEGER,
		label_raw TEXT NOT NULL,
		score REAL,
		lat REAL,
		lng REAL,
		photo_url TEXT,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (species_id) REFERENCES species(id)
	);
	CREATE INDEX IF NOT EXISTS idx_observations_species ON observations(species_id);
	CREATE INDEX IF NOT EXISTS idx_observations_created ON observations(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertSpecies(sp *models.Species) (int64, error) {
	query := `
		INSERT INTO species (slug, common_name, common_name_en, scientific_name, emoji, status, tip, habitat, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			common_name = excluded.common_name,
			common_name_en = excluded.common_name_en,
			scientific_name = excluded.scientific_name,
			emoji = excluded.emoji,
			status = excluded.status,
			tip = excluded.tip,
			habitat = excluded.habitat
	`

	_, err := c.db.Exec(
		query,
		sp.Slug,
		sp.CommonName,
		sp.CommonNameEN,
		sp.ScientificName,
		sp.Emoji,
		sp.Status,
		sp.Tip,
		sp.Habitat,
		time.Now().Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert species: %w", err)
	}

	var id int64
	err = c.db.QueryRow(`SELECT id FROM species WHERE slug = ?`, sp.Slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read species id: %w", err)
	}

	return id, nil
}

func (c *Client) InsertAlias(label string, speciesID int64) error {
	query := `INSERT OR IGNORE INTO species_alias (label, species_id) VALUES (?, ?)`

	_, err := c.db.Exec(query, label, speciesID)
	if err != nil {
		return fmt.Errorf("failed to insert alias: %w", err)
	}

	return nil
}

func (c *Client) GetSpecies(ctx context.Context, id int64) (*models.Species, error) {
	query := `
		SELECT id, slug, common_name, common_name_en, scientific_name, emoji, status, tip, habitat, created_at
		FROM species WHERE id = ?
	`

	var sp models.Species
	var createdAt int64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&sp.ID,
		&sp.Slug,
		&sp.CommonName,
		&sp.CommonNameEN,
		&sp.ScientificName,
		&sp.Emoji,
		&sp.Status,
		&sp.Tip,
		&sp.Habitat,
		&createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get species: %w", err)
	}

	sp.CreatedAt = time.Unix(createdAt, 0)

	return &sp, nil
}

func (c *Client) ListSpecies(ctx context.Context) ([]models.Species, error) {
	query := `
		SELECT id, slug, common_name, common_name_en, scientific_name, emoji, status, tip, habitat, created_at
		FROM species ORDER BY id
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	defer rows.Close()

	var species []models.Species
	for rows.Next() {
		var sp models.Species
		var createdAt int64

		err := rows.Scan(&sp.ID, &sp.Slug, &sp.CommonName, &sp.CommonNameEN, &sp.ScientificName,
			&sp.Emoji, &sp.Status, &sp.Tip, &sp.Habitat, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		sp.CreatedAt = time.Unix(createdAt, 0)
		species = append(species, sp)
	}

	return species, rows.Err()
}

// FindAliasExact matches the normalized label against the alias table
// case-insensitively. Ties are broken by alias id, the catalog's fixed
// query order.
func (c *Client) FindAliasExact(ctx context.Context, label string) (*models.Alias, error) {
	query := `
		SELECT id, label, species_id FROM species_alias
		WHERE LOWER(label) = ? ORDER BY id LIMIT 1
	`
	return c.scanAlias(ctx, query, label)
}

// FindAliasContains matches in both directions: an alias contained in
// the label, or the label contained in an alias.
func (c *Client) FindAliasContains(ctx context.Context, label string) (*models.Alias, error) {
	query := `
		SELECT id, label, species_id FROM species_alias
		WHERE ? LIKE '%' || LOWER(label) || '%'
		   OR LOWER(label) LIKE '%' || ? || '%'
		ORDER BY id LIMIT 1
	`

	row := c.db.QueryRowContext(ctx, query, label, label)
	return scanAliasRow(row)
}

// FindAliasPrefix matches any alias beginning with the given word.
func (c *Client) FindAliasPrefix(ctx context.Context, prefix string) (*models.Alias, error) {
	query := `
		SELECT id, label, species_id FROM species_alias
		WHERE LOWER(label) LIKE ? || '%' ORDER BY id LIMIT 1
	`
	return c.scanAlias(ctx, query, prefix)
}

func (c *Client) scanAlias(ctx context.Context, query, arg string) (*models.Alias, error) {
	row := c.db.QueryRowContext(ctx, query, arg)
	return scanAliasRow(row)
}

func scanAliasRow(row *sql.Row) (*models.Alias, error) {
	var a models.Alias
	err := row.Scan(&a.ID, &a.Label, &a.SpeciesID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan alias: %w", err)
	}
	return &a, nil
}

func (c *Client) InsertObservation(ctx context.Context, obs *models.Observation) error {
	query := `
		INSERT INTO observations (id, species_id, label_raw, score, lat, lng, photo_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.ExecContext(
		ctx,
		query,
		obs.ID,
		obs.SpeciesID,
		obs.LabelRaw,
		obs.Score,
		obs.Lat,
		obs.Lng,
		obs.PhotoURL,
		obs.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert observation: %w", err)
	}

	logger.Info("Observation recorded",
		zap.String("observation_id", obs.ID),
		zap.String("label", obs.LabelRaw),
	)

	return nil
}

func (c *Client) ListObservations(ctx context.Context, limit int) ([]models.Observation, error) {
	query := `
		SELECT id, species_id, label_raw, score, lat, lng, photo_url, created_at
		FROM observations
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		var createdAt int64

		err := rows.Scan(&o.ID, &o.SpeciesID, &o.LabelRaw, &o.Score, &o.Lat, &o.Lng, &o.PhotoURL, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		o.CreatedAt = time.Unix(createdAt, 0)
		observations = append(observations, o)
	}

	return observations, rows.Err()
}
