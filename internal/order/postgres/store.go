// Package postgres implements order.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/goevery/orderrelay/internal/ierr"
	"github.com/goevery/orderrelay/internal/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// database is the subset of *pgxpool.Pool the store needs.
type database interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const orderColumns = `id, customer_id, shop_id, delivery_id, delivery_address, delivery_lat, delivery_lng,
	status, payment_method, transaction_id, total_amount, created_at, updated_at`

type Store struct {
	db database
}

func NewStore(db database) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) Create(ctx context.Context, newOrder order.NewOrder) (order.Order, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return order.Order{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (id, customer_id, shop_id, delivery_address, delivery_lat, delivery_lng,
			payment_method, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+orderColumns,
		uuid.NewString(),
		newOrder.CustomerId,
		newOrder.ShopId,
		newOrder.DeliveryAddress,
		newOrder.DeliveryLat,
		newOrder.DeliveryLng,
		newOrder.PaymentMethod,
		newOrder.TotalAmount,
		order.StatusPending,
	)

	created, err := scanOrder(row)
	if err != nil {
		return order.Order{}, fmt.Errorf("insert order: %w", err)
	}

	created.Items, err = insertItems(ctx, tx, created.Id, newOrder.Items)
	if err != nil {
		return order.Order{}, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO payments (id, order_id, amount, method, status)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.NewString(), created.Id, newOrder.TotalAmount, newOrder.PaymentMethod, order.PaymentStatusPending)
	if err != nil {
		return order.Order{}, fmt.Errorf("insert payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("commit order: %w", err)
	}

	return created, nil
}

// insertItems queues one insert per item in a single pgx.Batch.
func insertItems(ctx context.Context, tx pgx.Tx, orderId string, items []order.NewItem) ([]order.Item, error) {
	inserted := make([]order.Item, 0, len(items))
	if len(items) == 0 {
		return inserted, nil
	}

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, order_id, product_id, product_name, quantity, price, created_at
		`, uuid.NewString(), orderId, item.ProductId, item.ProductName, item.Quantity, item.Price)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		item, err := scanItem(results.QueryRow())
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", err)
		}
		inserted = append(inserted, item)
	}

	return inserted, nil
}

func (s *Store) List(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text = '' OR customer_id = $1)
		  AND ($2::text = '' OR delivery_id = $2)
		ORDER BY created_at DESC
	`, filter.CustomerId, filter.DeliveryId)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	orderIds := make([]string, len(orders))
	for i, o := range orders {
		orderIds[i] = o.Id
	}

	itemsByOrder, err := s.itemsFor(ctx, orderIds)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].Id]
		if orders[i].Items == nil {
			orders[i].Items = []order.Item{}
		}
	}

	return orders, nil
}

func (s *Store) Get(ctx context.Context, orderId string) (order.Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderId)

	found, err := scanOrder(row)
	if err != nil {
		return order.Order{}, notFoundOr(err, "order not found")
	}

	return s.withItems(ctx, found)
}

func (s *Store) UpdateStatus(ctx context.Context, orderId string, status order.Status) (order.Order, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		orderId, status)

	updated, err := scanOrder(row)
	if err != nil {
		return order.Order{}, notFoundOr(err, "order not found")
	}

	return s.withItems(ctx, updated)
}

func (s *Store) ConfirmPayment(ctx context.Context, confirmation order.PaymentConfirmation) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, transaction_id = $3, updated_at = now()
		WHERE id = $1
	`, confirmation.OrderId, order.StatusConfirmed, confirmation.GatewayPaymentId)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ierr.New(ierr.ErrorCodeNotFound, errors.New("order not found"))
	}

	_, err = tx.Exec(ctx, `
		UPDATE payments SET status = $2, razorpay_payment_id = $3, razorpay_order_id = $4
		WHERE order_id = $1
	`, confirmation.OrderId, order.PaymentStatusCompleted, confirmation.GatewayPaymentId, confirmation.GatewayOrderId)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}

	return nil
}

func (s *Store) withItems(ctx context.Context, o order.Order) (order.Order, error) {
	itemsByOrder, err := s.itemsFor(ctx, []string{o.Id})
	if err != nil {
		return order.Order{}, err
	}

	o.Items = itemsByOrder[o.Id]
	if o.Items == nil {
		o.Items = []order.Item{}
	}

	return o, nil
}

func (s *Store) itemsFor(ctx context.Context, orderIds []string) (map[string][]order.Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at
	`, orderIds)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (order.Item, error) {
		return scanItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan order items: %w", err)
	}

	itemsByOrder := make(map[string][]order.Item, len(orderIds))
	for _, item := range items {
		itemsByOrder[item.OrderId] = append(itemsByOrder[item.OrderId], item)
	}

	return itemsByOrder, nil
}

func scanOrder(row pgx.Row) (order.Order, error) {
	var o order.Order

	err := row.Scan(
		&o.Id,
		&o.CustomerId,
		&o.ShopId,
		&o.DeliveryId,
		&o.DeliveryAddress,
		&o.DeliveryLat,
		&o.DeliveryLng,
		&o.Status,
		&o.PaymentMethod,
		&o.TransactionId,
		&o.TotalAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	return o, err
}

func scanItem(row pgx.Row) (order.Item, error) {
	var item order.Item

	err := row.Scan(
		&item.Id,
		&item.OrderId,
		&item.ProductId,
		&item.ProductName,
		&item.Quantity,
		&item.Price,
		&item.CreatedAt,
	)

	return item, err
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ierr.New(ierr.ErrorCodeNotFound, errors.New(message))
	}

	return err
}
