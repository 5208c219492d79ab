package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"lovmeds/internal/db"
	"lovmeds/internal/domain"
	"lovmeds/internal/logging"
	"lovmeds/internal/ordernumber"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *logrus.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *logrus.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logging.OrDiscard(logger)}
}

const orderColumns = `
o.id::text, o.order_number, o.customer_name, o.customer_email, o.customer_phone,
o.shipping_address, o.billing_address, o.subtotal, o.shipping, o.total,
o.status, o.paid, COALESCE(o.notes, ''), o.created_at, o.updated_at`

func (r *postgresRepo) Create(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	placedAt := in.PlacedAt.UTC()
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}
	day := ordernumber.Day(placedAt)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The first order of a day seeds the counter from orders already on that
	// day; later ones increment under the row lock.
	const nextSeq = `
INSERT INTO order_number_counters (day, last_value)
VALUES ($1::date, (
	SELECT COUNT(*) + 1
	FROM orders
	WHERE created_at >= $2 AND created_at < $3
))
ON CONFLICT (day) DO UPDATE
SET last_value = order_number_counters.last_value + 1
RETURNING last_value
`
	var seq int
	if err := tx.QueryRow(ctx, nextSeq, day, day, day.AddDate(0, 0, 1)).Scan(&seq); err != nil {
		r.logger.WithError(err).Error("order repo: next sequence")
		return nil, fmt.Errorf("next order number: %w", err)
	}
	number := ordernumber.Format(placedAt, seq)

	const insertOrder = `
INSERT INTO orders (order_number, customer_name, customer_email, customer_phone,
    shipping_address, billing_address, subtotal, shipping, total, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $11)
RETURNING id::text, status, paid, created_at, updated_at
`
	out := domain.Order{
		OrderNumber:     number,
		Customer:        in.Customer,
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		Subtotal:        in.Subtotal,
		Shipping:        in.Shipping,
		Total:           in.Total,
		Notes:           in.Notes,
	}
	var status string
	err = tx.QueryRow(ctx, insertOrder,
		number, in.Customer.Name, in.Customer.Email, in.Customer.Phone,
		in.ShippingAddress, in.BillingAddress,
		in.Subtotal, in.Shipping, in.Total, in.Notes, placedAt,
	).Scan(&out.ID, &status, &out.Paid, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		r.logger.WithError(err).WithField("order_number", number).Error("order repo: insert header")
		return nil, translate(err)
	}
	out.Status = domain.OrderStatus(status)

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price, position)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text
`
	out.Items = make([]domain.OrderItem, 0, len(in.Items))
	for i, item := range in.Items {
		item.OrderID = out.ID
		if err := tx.QueryRow(ctx, insertItem, out.ID, item.ProductID, item.ProductName, item.Quantity, item.Price, i).Scan(&item.ID); err != nil {
			r.logger.WithError(err).WithField("order_number", number).Error("order repo: insert item")
			return nil, translate(err)
		}
		out.Items = append(out.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"order_id":     out.ID,
		"order_number": number,
		"items":        len(out.Items),
	}).Info("order repo: created")
	return &out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != nil {
		where = append(where, "o.status = "+arg(string(*filter.Status)))
	}
	if filter.Paid != nil {
		where = append(where, "o.paid = "+arg(*filter.Paid))
	}
	q := "SELECT" + orderColumns + "\nFROM orders o"
	if len(where) > 0 {
		q += "\nWHERE " + strings.Join(where, " AND ")
	}
	q += "\nORDER BY o.created_at DESC, o.order_number DESC"
	if filter.Limit > 0 {
		q += "\nLIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		q += "\nOFFSET " + arg(filter.Offset)
	}

	orders, err := r.queryOrders(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, "o.id = $1", id)
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	return r.getOne(ctx, "o.order_number = $1", number)
}

func (r *postgresRepo) getOne(ctx context.Context, cond, key string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, "SELECT"+orderColumns+"\nFROM orders o\nWHERE "+cond, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	list := []domain.Order{o}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, paid bool) (*domain.Order, error) {
	const q = `
UPDATE orders
SET status = $2, paid = $3, updated_at = now()
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, id, string(status), paid)
	if err != nil {
		return nil, translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, domain.ErrNotFound
	}
	r.logger.WithFields(logrus.Fields{"order_id": id, "status": status, "paid": paid}).Info("order repo: status updated")
	return r.GetByID(ctx, id)
}

func (r *postgresRepo) Overview(ctx context.Context) (*domain.Overview, error) {
	out := &domain.Overview{
		OrdersByStatus: make(map[domain.OrderStatus]int, len(domain.OrderStatuses)),
		LowStock:       []domain.Product{},
	}
	for _, s := range domain.OrderStatuses {
		out.OrdersByStatus[s] = 0
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		out.OrdersByStatus[domain.OrderStatus(status)] = n
		out.TotalOrders += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const paidQ = `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM orders WHERE paid`
	if err := r.pool.QueryRow(ctx, paidQ).Scan(&out.PaidOrders, &out.Revenue); err != nil {
		return nil, err
	}
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&out.TotalProducts); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `
SELECT id::text, slug, title, normal_price, stock, is_active
FROM products
WHERE is_active AND stock <= $1
ORDER BY stock ASC, title ASC
`, LowStockThreshold)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.NormalPrice, &p.Stock, &p.IsActive); err != nil {
			rows.Close()
			return nil, err
		}
		out.LowStock = append(out.LowStock, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recent, err := r.queryOrders(ctx, "SELECT"+orderColumns+"\nFROM orders o\nORDER BY o.created_at DESC\nLIMIT 5")
	if err != nil {
		return nil, err
	}
	out.RecentOrders = recent
	return out, nil
}

func (r *postgresRepo) queryOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.WithError(err).Error("order repo: query")
		return nil, err
	}
	defer rows.Close()

	result := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
		orders[i].Items = []domain.OrderItem{}
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, order_id::text, product_id::text, product_name, quantity, price
FROM order_items
WHERE order_id::text = ANY($1)
ORDER BY position ASC
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o      domain.Order
		status string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Customer.Name, &o.Customer.Email, &o.Customer.Phone,
		&o.ShippingAddress, &o.BillingAddress, &o.Subtotal, &o.Shipping, &o.Total,
		&status, &o.Paid, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func translate(err error) error {
	switch {
	case db.IsCheckViolation(err) && db.ConstraintName(err) == "orders_completed_requires_paid":
		return domain.ErrCompletedRequiresPaid
	case db.IsCheckViolation(err):
		return fmt.Errorf("%s: %w", db.ConstraintName(err), domain.ErrInvalidInput)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("order number: %w", domain.ErrAlreadyExists)
	case db.IsForeignKeyViolation(err):
		return fmt.Errorf("unknown product: %w", domain.ErrInvalidInput)
	}
	return err
}
