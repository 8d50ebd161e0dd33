package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

const insertOrderSQL = `
	INSERT INTO orders (id, shopper_id, status, subtotal, shipping_cost, grand_total, payment_method, transaction_id,
		first_name, last_name, email, address, city, zip, country, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const insertLineSQL = `
	INSERT INTO order_lines (order_id, position, line_id, product_id, name, price, quantity, image, size, color, fabric)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// Lines are aggregated in the same query to avoid a second round trip per order.
const listByShopperSQL = `
	SELECT
		o.id, o.shopper_id, o.status, o.subtotal, o.shipping_cost, o.grand_total, o.payment_method,
		o.transaction_id, o.first_name, o.last_name, o.email, o.address, o.city, o.zip, o.country, o.created_at,
		COALESCE(
			JSONB_AGG(
				JSONB_BUILD_OBJECT(
					'id', l.line_id,
					'product_id', l.product_id,
					'name', l.name,
					'price', l.price,
					'quantity', l.quantity,
					'image', l.image,
					'size', l.size,
					'color', l.color,
					'fabric', l.fabric
				) ORDER BY l.position
			) FILTER (WHERE l.order_id IS NOT NULL),
			'[]'::jsonb
		) AS lines
	FROM orders o
	LEFT JOIN order_lines l ON l.order_id = o.id
	WHERE o.shopper_id = $1
	GROUP BY o.id
	ORDER BY o.created_at DESC
	LIMIT $2`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its lines in one transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateOrder", insertOrderSQL)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID,
		o.ShopperID,
		o.Status,
		o.Subtotal,
		o.ShippingCost,
		o.GrandTotal,
		string(o.PaymentMethod),
		o.TransactionID,
		o.Contact.FirstName,
		o.Contact.LastName,
		o.Contact.Email,
		o.Shipping.Address,
		o.Shipping.City,
		o.Shipping.Zip,
		o.Shipping.Country,
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, l := range o.Lines {
		_, err = tx.Exec(ctx, insertLineSQL,
			o.ID,
			i,
			l.ID,
			l.ProductID,
			l.Name,
			l.Price,
			l.Quantity,
			l.Image,
			l.Size,
			l.Color,
			l.Fabric,
		)
		if err != nil {
			return fmt.Errorf("insert order line %s: %w", l.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByShopper returns the shopper's most recent orders first.
func (r *OrderRepository) ListByShopper(ctx context.Context, shopperID string, limit int) (_ []domain.Order, err error) {
	ctx, end := database.TraceQuery(ctx, "ListOrdersByShopper", listByShopperSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listByShopperSQL, shopperID, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o         domain.Order
			method    string
			linesJSON []byte
		)
		if err = rows.Scan(
			&o.ID,
			&o.ShopperID,
			&o.Status,
			&o.Subtotal,
			&o.ShippingCost,
			&o.GrandTotal,
			&method,
			&o.TransactionID,
			&o.Contact.FirstName,
			&o.Contact.LastName,
			&o.Contact.Email,
			&o.Shipping.Address,
			&o.Shipping.City,
			&o.Shipping.Zip,
			&o.Shipping.Country,
			&o.CreatedAt,
			&linesJSON,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.PaymentMethod = domain.PaymentMethod(method)

		o.Lines = []domain.CartLine{}
		if len(linesJSON) > 0 {
			if err = json.Unmarshal(linesJSON, &o.Lines); err != nil {
				return nil, fmt.Errorf("unmarshal order %s lines: %w", o.ID, err)
			}
		}
		orders = append(orders, o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}
