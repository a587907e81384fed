package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Tables lists every managed table in creation order
var Tables = []string{
	"product_demand_historical",
	"distribution_center_to_wholesaler_mapping",
	"bom",
	"plant_supply",
	"transport_cost",
	"list_prices",
	"product_demand_forecasted",
	"product_demand_forecasted_dc",
	"raw_material_demand",
	"shipment_recommendations",
	"emails_distribution_center_to_wholesaler",
	"email_content_index",
	"pipeline_runs",
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS product_demand_historical (
		product    TEXT NOT NULL,
		sku        TEXT NOT NULL DEFAULT '',
		wholesaler TEXT NOT NULL,
		date       TEXT NOT NULL,
		demand     INTEGER NOT NULL CHECK(demand >= 0),
		PRIMARY KEY (product, wholesaler, date)
	)`,
	`CREATE TABLE IF NOT EXISTS distribution_center_to_wholesaler_mapping (
		distribution_center TEXT NOT NULL,
		wholesaler          TEXT PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS bom (
		material_in  TEXT NOT NULL,
		material_out TEXT NOT NULL,
		qty          INTEGER NOT NULL CHECK(qty > 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bom_material_out ON bom(material_out)`,
	`CREATE INDEX IF NOT EXISTS idx_bom_material_in ON bom(material_in)`,
	`CREATE TABLE IF NOT EXISTS plant_supply (
		product TEXT NOT NULL,
		plant   TEXT NOT NULL,
		supply  INTEGER NOT NULL CHECK(supply >= 0),
		PRIMARY KEY (product, plant)
	)`,
	`CREATE TABLE IF NOT EXISTS transport_cost (
		product             TEXT NOT NULL,
		plant               TEXT NOT NULL,
		distribution_center TEXT NOT NULL,
		cost                REAL NOT NULL CHECK(cost >= 0),
		PRIMARY KEY (product, plant, distribution_center)
	)`,
	`CREATE TABLE IF NOT EXISTS list_prices (
		product TEXT PRIMARY KEY,
		price   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_demand_forecasted (
		product    TEXT NOT NULL,
		wholesaler TEXT NOT NULL,
		date       TEXT NOT NULL,
		demand     INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS product_demand_forecasted_dc (
		product             TEXT NOT NULL,
		distribution_center TEXT NOT NULL,
		demand              INTEGER NOT NULL,
		PRIMARY KEY (product, distribution_center)
	)`,
	`CREATE TABLE IF NOT EXISTS raw_material_demand (
		raw    TEXT PRIMARY KEY,
		demand INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shipment_recommendations (
		product             TEXT NOT NULL,
		plant               TEXT,
		distribution_center TEXT,
		qty_shipped         INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS emails_distribution_center_to_wholesaler (
		date    TEXT PRIMARY KEY,
		content TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS email_content_index (
		date   TEXT PRIMARY KEY,
		vector TEXT NOT NULL,
		model  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pipeline_runs (
		id          TEXT PRIMARY KEY,
		stage       TEXT NOT NULL,
		started_at  TEXT NOT NULL,
		finished_at TEXT,
		status      TEXT NOT NULL,
		detail      TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Reset drops every managed table and recreates the schema
func Reset(ctx context.Context, db *sql.DB) error {
	err := withinTx(ctx, db, func(tx *sql.Tx) error {
		for _, table := range Tables {
			if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("dropping %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return Migrate(db)
}
