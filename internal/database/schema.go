package database

import (
	"context"
	"fmt"
	"log"
)

// tables : les noms sont qualifiés par keyspace à l'exécution.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS %s.products (
		product_id text PRIMARY KEY,
		pname text, pdesc text,
		price double, offer double,
		stock_count int,
		brand text, material text, category text,
		rating double,
		image_urls list<text>,
		created_at timestamp, updated_at timestamp)`,

	`CREATE TABLE IF NOT EXISTS %s.stock_movements (
		product_id text,
		id timeuuid,
		type text, quantity int,
		prev_stock int, new_stock int,
		reason text, order_id text, user_id text,
		created_at timestamp,
		PRIMARY KEY (product_id, id)
	) WITH CLUSTERING ORDER BY (id DESC)`,

	`CREATE TABLE IF NOT EXISTS %s.cart_lines (
		user_id text,
		line_id text,
		product_id text, product_name text,
		price double, qty int,
		created_at timestamp, updated_at timestamp,
		PRIMARY KEY (user_id, line_id))`,

	`CREATE TABLE IF NOT EXISTS %s.cart_claims (
		user_id text PRIMARY KEY,
		claim_id timeuuid)`,

	`CREATE TABLE IF NOT EXISTS %s.addresses (
		address_id text PRIMARY KEY,
		user_id text,
		mob1 text, mob2 text, postalcode text,
		address text, area text, landmark text, city text, state text,
		created_at timestamp, updated_at timestamp)`,

	`CREATE TABLE IF NOT EXISTS %s.addresses_by_user (
		user_id text PRIMARY KEY,
		address_id text)`,

	`CREATE TABLE IF NOT EXISTS %s.orders (
		order_id text PRIMARY KEY,
		order_group_id text,
		product_id text, user_id text, address_id text,
		qty int, total double,
		mode text, status text,
		created_at timestamp, updated_at timestamp)`,

	`CREATE TABLE IF NOT EXISTS %s.orders_by_user (
		user_id text,
		created_at timestamp,
		order_id text,
		PRIMARY KEY (user_id, created_at, order_id)
	) WITH CLUSTERING ORDER BY (created_at DESC, order_id ASC)`,

	`CREATE TABLE IF NOT EXISTS %s.orders_by_group (
		order_group_id text,
		created_at timestamp,
		order_id text,
		PRIMARY KEY (order_group_id, created_at, order_id))`,

	`CREATE TABLE IF NOT EXISTS %s.order_cancellations (
		order_id text,
		id timeuuid,
		reason text,
		created_at timestamp,
		PRIMARY KEY (order_id, id))`,

	`CREATE TABLE IF NOT EXISTS %s.users (
		user_id text PRIMARY KEY,
		username text, first_name text, last_name text, email text,
		created_at timestamp)`,

	`CREATE TABLE IF NOT EXISTS %s.admins (
		admin_id text PRIMARY KEY,
		email text, name text, role text, password_hash text,
		created_at timestamp)`,

	`CREATE TABLE IF NOT EXISTS %s.admins_by_email (
		email text PRIMARY KEY,
		admin_id text)`,
}

// SchemaStatements renvoie le DDL complet pour le keyspace.
func SchemaStatements(keyspace string, replication int) []string {
	if replication <= 0 {
		replication = 1
	}
	out := []string{fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}`,
		keyspace, replication)}
	for _, t := range tables {
		out = append(out, fmt.Sprintf(t, keyspace))
	}
	return out
}

// InitSchema crée keyspace et tables ; idempotent, appelé au démarrage.
func (s *Scylla) InitSchema(ctx context.Context, replication int) error {
	for _, stmt := range SchemaStatements(s.ks, replication) {
		if err := s.session.Query(stmt).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("schéma: %w", err)
		}
	}
	log.Printf("✅ Schéma ScyllaDB prêt (%d tables)", len(tables))
	return nil
}

// DropSchema supprime le keyspace (teardown des tests d'intégration).
func (s *Scylla) DropSchema(ctx context.Context) error {
	return s.session.Query(fmt.Sprintf(`DROP KEYSPACE IF EXISTS %s`, s.ks)).WithContext(ctx).Exec()
}
