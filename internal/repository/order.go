package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/primosamu/cannoli-dispatch/internal/apperr"
	"github.com/primosamu/cannoli-dispatch/internal/domain"
	"github.com/primosamu/cannoli-dispatch/internal/ports/ordertx"
)

const orderColumns = `id, number, channel, status, items, total_amount,
    delivery_type, courier_name, courier_id, company, tracking_code, delivery_fee, delivery_notes,
    created_at, updated_at, estimated_delivery_time`

// itemRecord is the jsonb shape of an order line.
type itemRecord struct {
	Name      string         `json:"name"`
	Quantity  int            `json:"quantity"`
	UnitPrice int64          `json:"unit_price"`
	Notes     string         `json:"notes,omitempty"`
	Options   []optionRecord `json:"options,omitempty"`
}

type optionRecord struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// OrderRepo is the PostgreSQL order store.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// GetOrder returns an order by its ID.
func (r *OrderRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return getOrder(ctx, r.db, id)
}

// ListOrders returns all orders in intake order.
func (r *OrderRepo) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// откатываем в случае паники
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&TxRepo{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

var _ ordertx.Repository = (*TxRepo)(nil)

// GetOrder reads an order inside the transaction.
func (r *TxRepo) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return getOrder(ctx, r.tx, id)
}

// CreateOrder inserts a new order.
func (r *TxRepo) CreateOrder(ctx context.Context, o domain.Order) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO orders (`+orderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
    `,
		o.ID, o.Number, string(o.Channel), string(o.Status), items, int64(o.TotalAmount),
		string(o.Delivery.Type), o.Delivery.Courier, nullIfEmpty(o.Delivery.CourierID),
		string(o.Delivery.Company), o.Delivery.TrackingCode, int64(o.Delivery.Fee), o.Delivery.Notes,
		o.CreatedAt, o.UpdatedAt, o.EstimatedDeliveryTime,
	)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		if IsForeignKey(err) {
			return apperr.ErrCourierUnavailable
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// UpdateOrder writes the mutable fields if updated_at still equals expectedUpdatedAt.
func (r *TxRepo) UpdateOrder(ctx context.Context, o domain.Order, expectedUpdatedAt time.Time) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET status = $3,
            total_amount = $4,
            delivery_type = $5,
            courier_name = $6,
            courier_id = $7,
            company = $8,
            tracking_code = $9,
            delivery_fee = $10,
            delivery_notes = $11,
            updated_at = $12,
            estimated_delivery_time = $13
        WHERE id = $1 AND updated_at = $2
    `,
		o.ID, expectedUpdatedAt, string(o.Status), int64(o.TotalAmount),
		string(o.Delivery.Type), o.Delivery.Courier, nullIfEmpty(o.Delivery.CourierID),
		string(o.Delivery.Company), o.Delivery.TrackingCode, int64(o.Delivery.Fee), o.Delivery.Notes,
		o.UpdatedAt, o.EstimatedDeliveryTime,
	)
	if err != nil {
		return fmt.Errorf("update order %s: %w", o.ID, err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check order %s: %w", o.ID, err)
	}
	if !exists {
		return apperr.ErrNotFound
	}
	return apperr.ErrConflict
}

// NextOrderNumber draws the next human-facing order sequence value.
func (r *TxRepo) NextOrderNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return n, nil
}

// GetCourier locks the courier row for the rest of the transaction.
func (r *TxRepo) GetCourier(ctx context.Context, id string) (domain.Courier, error) {
	return getCourier(ctx, r.tx, id, true)
}

// IncrementDeliveryCount adds exactly one completed delivery to the courier.
func (r *TxRepo) IncrementDeliveryCount(ctx context.Context, id string) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE couriers
        SET delivery_count = delivery_count + 1, updated_at = now()
        WHERE id = $1
    `, id)
	if err != nil {
		return fmt.Errorf("increment delivery count %s: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func getOrder(ctx context.Context, q querier, id string) (domain.Order, error) {
	o, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return domain.Order{}, apperr.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o                               domain.Order
		channel, status, dtype, company string
		items                           []byte
		total, fee                      int64
		courierID                       *string
	)
	err := row.Scan(
		&o.ID, &o.Number, &channel, &status, &items, &total,
		&dtype, &o.Delivery.Courier, &courierID, &company, &o.Delivery.TrackingCode, &fee, &o.Delivery.Notes,
		&o.CreatedAt, &o.UpdatedAt, &o.EstimatedDeliveryTime,
	)
	if err != nil {
		return domain.Order{}, err
	}

	o.Channel = domain.Channel(channel)
	o.Status = domain.OrderStatus(status)
	o.TotalAmount = domain.Money(total)
	o.Delivery.Type = domain.DeliveryType(dtype)
	o.Delivery.Company = domain.DeliveryCompany(company)
	o.Delivery.Fee = domain.Money(fee)
	if courierID != nil {
		o.Delivery.CourierID = *courierID
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	if o.EstimatedDeliveryTime != nil {
		eta := o.EstimatedDeliveryTime.UTC()
		o.EstimatedDeliveryTime = &eta
	}

	if o.Items, err = decodeItems(items); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func encodeItems(items []domain.Item) ([]byte, error) {
	recs := make([]itemRecord, 0, len(items))
	for _, it := range items {
		rec := itemRecord{Name: it.Name, Quantity: it.Quantity, UnitPrice: int64(it.UnitPrice), Notes: it.Notes}
		for _, opt := range it.Options {
			rec.Options = append(rec.Options, optionRecord{Name: opt.Name, Price: int64(opt.Price)})
		}
		recs = append(recs, rec)
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	return b, nil
}

func decodeItems(b []byte) ([]domain.Item, error) {
	var recs []itemRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]domain.Item, 0, len(recs))
	for _, rec := range recs {
		it := domain.Item{Name: rec.Name, Quantity: rec.Quantity, UnitPrice: domain.Money(rec.UnitPrice), Notes: rec.Notes}
		for _, opt := range rec.Options {
			it.Options = append(it.Options, domain.Option{Name: opt.Name, Price: domain.Money(opt.Price)})
		}
		items = append(items, it)
	}
	return items, nil
}
