package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
)

const courierColumns = `id, name, phone, is_available, delivery_count, created_at, updated_at`

// CourierRepo represents courier repository.
type CourierRepo struct{ db *pgxpool.Pool }

// NewCourierRepo creates a new CourierRepo.
func NewCourierRepo(db *pgxpool.Pool) *CourierRepo { return &CourierRepo{db: db} }

// GetCourier - returns courier by its ID.
func (r *CourierRepo) GetCourier(ctx context.Context, id string) (domain.Courier, error) {
	return getCourier(ctx, r.db, id, false)
}

// ListCouriers returns couriers in creation order.
func (r *CourierRepo) ListCouriers(ctx context.Context) ([]domain.Courier, error) {
	rows, err := r.db.Query(ctx, `SELECT `+courierColumns+` FROM couriers ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list couriers: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Courier, 0)
	for rows.Next() {
		var c domain.Courier
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.IsAvailable, &c.DeliveryCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCourier - creates a new courier.
func (r *CourierRepo) CreateCourier(ctx context.Context, c domain.Courier) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO couriers (`+courierColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, c.ID, c.Name, c.Phone, c.IsAvailable, c.DeliveryCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("create courier: %w", err)
	}
	return nil
}

// ToggleAvailability flips is_available in a single statement and returns the updated courier.
func (r *CourierRepo) ToggleAvailability(ctx context.Context, id string, now time.Time) (domain.Courier, error) {
	var c domain.Courier
	err := r.db.QueryRow(ctx, `
        UPDATE couriers
        SET is_available = NOT is_available, updated_at = $2
        WHERE id = $1
        RETURNING `+courierColumns,
		id, now,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.IsAvailable, &c.DeliveryCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return domain.Courier{}, apperr.ErrNotFound
		}
		return domain.Courier{}, fmt.Errorf("toggle courier %s: %w", id, err)
	}
	return c, nil
}

func getCourier(ctx context.Context, q querier, id string, forUpdate bool) (domain.Courier, error) {
	sql := `SELECT ` + courierColumns + ` FROM couriers WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}

	var c domain.Courier
	err := q.QueryRow(ctx, sql, id).
		Scan(&c.ID, &c.Name, &c.Phone, &c.IsAvailable, &c.DeliveryCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return domain.Courier{}, apperr.ErrNotFound
		}
		return domain.Courier{}, fmt.Errorf("get courier %s: %w", id, err)
	}
	return c, nil
}
