package main

import (
	"context"
	"math/rand"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"stockroom/internal/config"
	"stockroom/internal/postgres"
	"stockroom/internal/stock"
)

// seed provisions the schema and a small catalog of products and stores
// with randomized starting stock, one inventory record per pair.

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id  TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price_cents BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS stores (
	store_id TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	address  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS inventory (
	product_id   TEXT NOT NULL REFERENCES products(product_id),
	store_id     TEXT NOT NULL REFERENCES stores(store_id),
	available    INT NOT NULL CHECK (available >= 0),
	reserved     INT NOT NULL CHECK (reserved >= 0),
	total        INT NOT NULL CHECK (total = available + reserved),
	last_updated TIMESTAMPTZ NOT NULL,
	version      BIGINT NOT NULL,
	PRIMARY KEY (product_id, store_id)
);

CREATE TABLE IF NOT EXISTS reservations (
	reservation_id    TEXT PRIMARY KEY,
	product_id        TEXT NOT NULL,
	store_id          TEXT NOT NULL,
	customer_id       TEXT,
	quantity          INT NOT NULL CHECK (quantity > 0),
	status            TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL,
	expires_at        TIMESTAMPTZ NOT NULL,
	confirmation_code TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reservations_expired
	ON reservations (expires_at) WHERE status = 'ACTIVE';
CREATE INDEX IF NOT EXISTS idx_reservations_customer
	ON reservations (customer_id);
`

type product struct{ id, name, description string }
type store struct{ id, name, address string }

var products = []product{
	{"SKU001", "Smartphone Samsung Galaxy", "Latest Samsung smartphone"},
	{"SKU002", "Laptop MacBook Pro", "MacBook Pro 14-inch"},
	{"SKU003", "Auriculares Sony", "Auriculares inalambricos Sony"},
	{"SKU004", "Tablet iPad", "iPad de 10.9 pulgadas"},
	{"SKU005", "Smart TV 55", "Smart TV LED 55 pulgadas"},
}

var stores = []store{
	{"STORE001", "Tienda Centro", "Av. Providencia 123, Santiago"},
	{"STORE002", "Tienda Las Condes", "Av. Kennedy 456, Las Condes"},
	{"STORE003", "Tienda Nunoa", "Av. Grecia 789, Nunoa"},
	{"STORE004", "Tienda Maipu", "Av. Pajaritos 321, Maipu"},
	{"STORE005", "Tienda Valparaiso", "Calle Condell 654, Valparaiso"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if _, err := db.Exec(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("create schema")
	}

	for _, p := range products {
		_, err := db.Exec(ctx, `
			INSERT INTO products (product_id, name, description)
			VALUES ($1, $2, $3) ON CONFLICT (product_id) DO NOTHING`,
			p.id, p.name, p.description)
		if err != nil {
			log.Fatal().Err(err).Str("product_id", p.id).Msg("seed product")
		}
	}

	for _, s := range stores {
		_, err := db.Exec(ctx, `
			INSERT INTO stores (store_id, name, address)
			VALUES ($1, $2, $3) ON CONFLICT (store_id) DO NOTHING`,
			s.id, s.name, s.address)
		if err != nil {
			log.Fatal().Err(err).Str("store_id", s.id).Msg("seed store")
		}
	}

	seeded := 0
	for _, p := range products {
		for _, s := range stores {
			rec := stock.NewRecord(p.id, s.id, rand.Intn(41)+10)
			ct, err := db.Exec(ctx, `
				INSERT INTO inventory (product_id, store_id, available, reserved, total, last_updated, version)
				VALUES ($1, $2, $3, $4, $5, $6, 1)
				ON CONFLICT (product_id, store_id) DO NOTHING`,
				rec.ProductID, rec.StoreID, rec.Available, rec.Reserved, rec.Total, rec.LastUpdated)
			if err != nil {
				log.Fatal().Err(err).Str("product_id", p.id).Str("store_id", s.id).Msg("seed inventory")
			}
			seeded += int(ct.RowsAffected())
		}
	}

	log.Info().
		Int("products", len(products)).
		Int("stores", len(stores)).
		Int("inventory_rows", seeded).
		Msg("seed complete")
}
