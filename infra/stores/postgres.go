package stores

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loadaxis/fleetopt/core/fleet"
	"github.com/loadaxis/fleetopt/core/model"
	"github.com/loadaxis/fleetopt/infra/logger"
)

// PostgresLoadStore implements fleet.LoadStore on a PostgreSQL pool. The
// claim is a single conditional UPDATE, so two concurrent claimers can never
// both win a load.
type PostgresLoadStore struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

// NewPostgresLoadStore connects to the database and verifies the connection.
func NewPostgresLoadStore(ctx context.Context, dsn string) (*PostgresLoadStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("stores: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("stores: ping postgres: %w", err)
	}
	return &PostgresLoadStore{pool: pool, log: logger.New("postgres-loads")}, nil
}

const listAvailableQuery = `
SELECT id, origin, destination, weight_lb,
       length_ft, width_ft, height_ft, pallet_count,
       commodity, hazmat, stackable, fragile, revenue,
       pickup_start, pickup_end, delivery_start, delivery_end,
       priority, customer_tier
FROM loads
WHERE claimed_by IS NULL
  AND ($1 = '' OR region = $1)
  AND ($2::timestamptz IS NULL OR pickup_start >= $2)
  AND ($3::timestamptz IS NULL OR pickup_start <= $3)
ORDER BY pickup_start, id`

// ListAvailable returns unclaimed loads matching the filter.
func (s *PostgresLoadStore) ListAvailable(ctx context.Context, f fleet.LoadFilter) ([]model.Load, error) {
	var after, before any
	if !f.PickupAfter.IsZero() {
		after = f.PickupAfter
	}
	if !f.PickupBefore.IsZero() {
		before = f.PickupBefore
	}
	rows, err := s.pool.Query(ctx, listAvailableQuery, f.Region, after, before)
	if err != nil {
		return nil, fmt.Errorf("stores: list available: %w", err)
	}
	defer rows.Close()

	var out []model.Load
	for rows.Next() {
		var l model.Load
		var priority, tier string
		if err := rows.Scan(
			&l.ID, &l.Origin, &l.Destination, &l.WeightLb,
			&l.Dimensions.LengthFt, &l.Dimensions.WidthFt, &l.Dimensions.HeightFt, &l.PalletCount,
			&l.Commodity, &l.Hazmat, &l.Stackable, &l.Fragile, &l.Revenue,
			&l.Pickup.Start, &l.Pickup.End, &l.Delivery.Start, &l.Delivery.End,
			&priority, &tier,
		); err != nil {
			return nil, fmt.Errorf("stores: scan load: %w", err)
		}
		l.Priority = model.ParsePriority(priority)
		l.Customer = model.ParseCustomerTier(tier)
		out = append(out, l)
	}
	return out, rows.Err()
}

// Claim performs the compare-and-swap assignment: the UPDATE only matches an
// unclaimed row, so exactly one concurrent caller succeeds.
func (s *PostgresLoadStore) Claim(ctx context.Context, loadID, driverID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE loads SET claimed_by = $2, claimed_at = now() WHERE id = $1 AND claimed_by IS NULL`,
		loadID, driverID)
	if err != nil {
		return fmt.Errorf("stores: claim load %s: %w", loadID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var owner *string
	err = s.pool.QueryRow(ctx, `SELECT claimed_by FROM loads WHERE id = $1`, loadID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("stores: unknown load %s", loadID)
	}
	if err != nil {
		return fmt.Errorf("stores: claim load %s: %w", loadID, err)
	}
	if owner != nil && *owner == driverID {
		// Re-claim by the same driver is idempotent.
		return nil
	}
	return fleet.ErrAlreadyClaimed
}

// Release returns the load to the available pool.
func (s *PostgresLoadStore) Release(ctx context.Context, loadID string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE loads SET claimed_by = NULL, claimed_at = NULL WHERE id = $1`, loadID); err != nil {
		return fmt.Errorf("stores: release load %s: %w", loadID, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresLoadStore) Close() {
	s.pool.Close()
}
