package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/internal/models/order"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
)

type Repository interface {
	GetOrders(ctx context.Context) ([]*order.Order, error)
	GetOrderByID(ctx context.Context, id int) (*order.Order, error)
	CreateOrder(ctx context.Context, o *order.Order) (int, error)
	UpdateOrder(ctx context.Context, o *order.Order) error
	DeleteOrder(ctx context.Context, id int) error
	AppendStatusHistory(ctx context.Context, orderID int, status order.Status) error
}

type Repo struct {
	db     *sql.DB
	getter *trmsql.CtxGetter
	logger logger.Logger
}

func NewRepository(db *sql.DB, getter *trmsql.CtxGetter, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}
	if getter == nil {
		return nil, errors.New("nil dependency: transaction getter")
	}

	return &Repo{db: db, getter: getter, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

const selectOrder = `
	SELECT o.id, o.client_id, o.supplier_id, c.name, s.name, o.name,
		o.status, o.total_cny, o.total_rub, o.total_usd, o.created_date
	FROM orders o
	JOIN clients c ON c.id = o.client_id
	JOIN suppliers s ON s.id = o.supplier_id
`

func scanOrder(row interface{ Scan(...any) error }) (*order.Order, error) {
	o := new(order.Order)
	err := row.Scan(
		&o.ID,
		&o.ClientID,
		&o.SupplierID,
		&o.ClientName,
		&o.SupplierName,
		&o.Name,
		&o.Status,
		&o.TotalCNY,
		&o.TotalRUB,
		&o.TotalUSD,
		&o.CreatedDate,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) GetOrders(ctx context.Context) ([]*order.Order, error) {
	const query = selectOrder + " ORDER BY o.created_date DESC, o.id DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	// An empty list is a valid result for the list endpoint.
	orders := make([]*order.Order, 0)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *Repo) GetOrderByID(ctx context.Context, id int) (*order.Order, error) {
	const query = selectOrder + " WHERE o.id = $1"

	o, err := scanOrder(r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return o, nil
}

func (r *Repo) CreateOrder(ctx context.Context, o *order.Order) (int, error) {
	const query = `
		INSERT INTO orders (client_id, supplier_id, name, status, total_cny, total_rub, total_usd)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_date;
	`

	err := r.getter.DefaultTrOrDB(ctx, r.db).
		QueryRowContext(ctx, query,
			o.ClientID, o.SupplierID, o.Name, o.Status,
			o.TotalCNY, o.TotalRUB, o.TotalUSD).
		Scan(&o.ID, &o.CreatedDate)
	if err != nil {
		return 0, fmt.Errorf("create order: %w", classify(err))
	}

	return o.ID, nil
}

func (r *Repo) UpdateOrder(ctx context.Context, o *order.Order) error {
	const query = `
		UPDATE orders SET
			client_id = $2,
			supplier_id = $3,
			name = $4,
			status = $5,
			total_cny = $6,
			total_rub = $7,
			total_usd = $8
		WHERE id = $1;
	`

	result, err := r.getter.DefaultTrOrDB(ctx, r.db).
		ExecContext(ctx, query,
			o.ID, o.ClientID, o.SupplierID, o.Name, o.Status,
			o.TotalCNY, o.TotalRUB, o.TotalUSD)
	if err != nil {
		return fmt.Errorf("update order: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *Repo) DeleteOrder(ctx context.Context, id int) error {
	const query = "DELETE FROM orders WHERE id = $1"

	result, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *Repo) AppendStatusHistory(ctx context.Context, orderID int, status order.Status) error {
	const query = "INSERT INTO order_status_history (order_id, status) VALUES ($1, $2)"

	_, err := r.getter.DefaultTrOrDB(ctx, r.db).ExecContext(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("append status history: %w", err)
	}

	return nil
}

// classify maps low-level Postgres errors onto the domain error taxonomy.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return &errs.UnknownReferenceError{FieldName: pgErr.ConstraintName}
		case pgerrcode.UniqueViolation:
			return &errs.AlreadyExistsError{FieldName: pgErr.ConstraintName}
		}
	}
	return err
}
