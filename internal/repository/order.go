package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/chronoshop/chronoshop/internal/model"
)

// Common errors for order repository operations.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrProductUnavailable = errors.New("product is not available for purchase")
	ErrEmptyOrder         = errors.New("order has no items")
)

// StockError reports which product could not satisfy a checkout.
type StockError struct {
	ProductID string `json:"product_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

const orderColumns = `id, order_number, user_id, total_amount, status,
		shipping_name, shipping_email, shipping_phone, shipping_address, shipping_city,
		shipping_state, shipping_postal_code, shipping_country,
		payment_method, payment_status, payment_id, created_at, updated_at`

// PlaceOrder runs the checkout transaction. It locks the ordered product
// rows, verifies availability and stock, snapshots unit prices into the
// order items, decrements stock, persists the order and clears the user's
// cart. Order.Items must carry ProductID and Quantity; prices and the
// order total are filled in from the locked rows.
//
// Product rows are locked in ascending ID order so concurrent checkouts
// cannot deadlock.
func (r *Repository) PlaceOrder(ctx context.Context, order *model.Order) error {
	if len(order.Items) == 0 {
		return ErrEmptyOrder
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin checkout transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	items := make([]*model.OrderItem, len(order.Items))
	copy(items, order.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	order.TotalAmount = 0
	for _, item := range items {
		var price float64
		var stock int
		var isActive, deleted bool

		err := tx.QueryRow(ctx, `
			SELECT price, stock_quantity, is_active, (deleted_at IS NOT NULL)
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(&price, &stock, &isActive, &deleted)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to lock product %s: %w", item.ProductID, err)
		}

		if !isActive || deleted {
			return ErrProductUnavailable
		}
		if stock < item.Quantity {
			return &StockError{ProductID: item.ProductID, Requested: item.Quantity, Available: stock}
		}

		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity - $2, updated_at = NOW()
			WHERE id = $1
		`, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}

		item.UnitPrice = price
		item.TotalPrice = price * float64(item.Quantity)
		order.TotalAmount += item.TotalPrice
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, order_number, user_id, total_amount, status,
			shipping_name, shipping_email, shipping_phone, shipping_address, shipping_city,
			shipping_state, shipping_postal_code, shipping_country,
			payment_method, payment_status, payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		order.ID, order.OrderNumber, order.UserID, order.TotalAmount, order.Status,
		order.Shipping.Name, order.Shipping.Email, order.Shipping.Phone, order.Shipping.Address, order.Shipping.City,
		order.Shipping.State, order.Shipping.PostalCode, order.Shipping.Country,
		order.PaymentMethod, order.PaymentStatus, order.PaymentID, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		item.OrderID = order.ID
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}

		// Sales roll into the same daily stats rows the view pipeline writes.
		if _, err := tx.Exec(ctx, `
			INSERT INTO daily_product_stats (id, product_id, date, units_sold, created_at, updated_at)
			VALUES ($1 || ':' || TO_CHAR(NOW(), 'YYYY-MM-DD'), $1, CURRENT_DATE, $2, NOW(), NOW())
			ON CONFLICT (product_id, date)
			DO UPDATE SET units_sold = daily_product_stats.units_sold + EXCLUDED.units_sold, updated_at = NOW()
		`, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("failed to record units sold: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit checkout transaction: %w", err)
	}

	return nil
}

// GetOrderByID retrieves an order with its items.
func (r *Repository) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	if order.Items, err = r.getOrderItems(ctx, order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByNumber retrieves an order by its public order number.
func (r *Repository) GetOrderByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	order, err := r.scanOrder(r.pool.QueryRow(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}

	if order.Items, err = r.getOrderItems(ctx, order.ID); err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrdersByUser retrieves a user's orders using keyset pagination.
// Items are not loaded for list views.
func (r *Repository) ListOrdersByUser(ctx context.Context, userID string, cursor string, limit int) ([]*model.Order, string, error) {
	var cursorData *PaginationCursor
	if cursor != "" {
		var err error
		cursorData, err = decodeCursor(cursor)
		if err != nil {
			return nil, "", ErrInvalidCursor
		}
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1`
	args := []any{userID}
	argIndex := 2

	if cursorData != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, cursorData.CreatedAt, cursorData.ID)
		argIndex += 2
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		order, err := r.scanOrder(rows)
		if err != nil {
			return nil, "", fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating orders: %w", err)
	}

	var nextCursor string
	if len(orders) > limit {
		orders = orders[:limit]
		last := orders[len(orders)-1]
		nextCursor = encodeCursor(&PaginationCursor{ID: last.ID, CreatedAt: last.CreatedAt})
	}

	return orders, nextCursor, nil
}

// CancelOrder cancels an order and restores the reserved stock in a
// single transaction. The caller is responsible for checking ownership;
// the lifecycle check happens here under the row lock.
func (r *Repository) CancelOrder(ctx context.Context, id string) (*model.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := r.scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if !order.IsCancellable() {
		return nil, fmt.Errorf("order %s in status %s: %w", order.OrderNumber, order.Status, ErrInvalidTransition)
	}

	// Restore stock in ascending product ID order, mirroring checkout.
	rows, err := tx.Query(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1 ORDER BY product_id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	type restore struct {
		productID string
		quantity  int
	}
	var restores []restore
	for rows.Next() {
		var re restore
		if err := rows.Scan(&re.productID, &re.quantity); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		restores = append(restores, re)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	for _, re := range restores {
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock_quantity = stock_quantity + $2, updated_at = NOW()
			WHERE id = $1
		`, re.productID, re.quantity); err != nil {
			return nil, fmt.Errorf("failed to restore stock for product %s: %w", re.productID, err)
		}
	}

	newPayment := order.PaymentStatus
	if newPayment == model.PaymentStatusPaid {
		newPayment = model.PaymentStatusRefunded
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, payment_status = $3, updated_at = NOW() WHERE id = $1
	`, id, model.OrderStatusCancelled, newPayment); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancel transaction: %w", err)
	}

	order.Status = model.OrderStatusCancelled
	order.PaymentStatus = newPayment
	return order, nil
}

// ErrInvalidTransition is returned when an order status change is not
// allowed by the lifecycle.
var ErrInvalidTransition = errors.New("invalid order status transition")

// UpdateOrderStatus moves an order to a new status. The transition is
// validated against the current status under a row lock.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, next model.OrderStatus) (*model.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to begin status transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current model.OrderStatus
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if !current.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", current, next, ErrInvalidTransition)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, next); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status transaction: %w", err)
	}

	return r.GetOrderByID(ctx, id)
}

// SetPaymentStatus records a payment state change reported by the
// payment provider.
func (r *Repository) SetPaymentStatus(ctx context.Context, id string, status model.PaymentStatus, paymentID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE orders SET payment_status = $2, payment_id = $3, updated_at = NOW() WHERE id = $1
	`, id, status, paymentID)
	if err != nil {
		return fmt.Errorf("failed to set payment status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *Repository) getOrderItems(ctx context.Context, orderID string) ([]*model.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total_price,
			p.name, p.model_number, p.main_image_url
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		var p model.Product
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
			&p.Name, &p.ModelNumber, &p.MainImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		p.ID = item.ProductID
		item.Product = &p
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *Repository) scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.TotalAmount, &o.Status,
		&o.Shipping.Name, &o.Shipping.Email, &o.Shipping.Phone, &o.Shipping.Address, &o.Shipping.City,
		&o.Shipping.State, &o.Shipping.PostalCode, &o.Shipping.Country,
		&o.PaymentMethod, &o.PaymentStatus, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
