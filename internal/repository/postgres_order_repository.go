package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(cred *Credentials) (*PostgresOrderRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresOrderRepository{db: db}, nil
}

func (r *PostgresOrderRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "storefront_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresOrderRepository) Append(ctx context.Context, order domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal order address: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, items, address, payment_method, payment_id,
	                              subtotal, shipping, tax, total, status, order_date, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		itemsJSON,
		addressJSON,
		order.PaymentMethod,
		sql.NullString{String: order.PaymentID, Valid: order.PaymentID != ""},
		int64(order.Subtotal),
		int64(order.Shipping),
		int64(order.Tax),
		int64(order.Total),
		order.Status,
		order.OrderDate)

	if insertErr != nil {
		var pqErr *pq.Error
		if errors.As(insertErr, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

const selectOrderColumns = `SELECT id, user_id, items, address, payment_method, payment_id,
	                                   subtotal, shipping, tax, total, status, order_date
	                            FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order       domain.Order
		itemsJSON   []byte
		addressJSON []byte
		paymentID   sql.NullString
		subtotal    int64
		shipping    int64
		tax         int64
		total       int64
	)
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&addressJSON,
		&order.PaymentMethod,
		&paymentID,
		&subtotal,
		&shipping,
		&tax,
		&total,
		&order.Status,
		&order.OrderDate,
	); err != nil {
		return domain.Order{}, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal order address: %w", err)
	}
	order.PaymentID = paymentID.String
	order.Subtotal = domain.Money(subtotal)
	order.Shipping = domain.Money(shipping)
	order.Tax = domain.Money(tax)
	order.Total = domain.Money(total)
	order.OrderDate = order.OrderDate.UTC()
	return order, nil
}

func (r *PostgresOrderRepository) List(ctx context.Context, userID string) ([]domain.Order, error) {
	query := selectOrderColumns + ` WHERE user_id = $1 ORDER BY order_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// UpdateStatus locks the order row so two concurrent transitions are applied
// one after the other against the status each of them read.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, userID, orderID string, status domain.OrderStatus) (domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, selectOrderColumns+` WHERE id = $1 AND user_id = $2 FOR UPDATE`, orderID, userID)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order by id: %w", err)
	}

	if err := order.TransitionTo(status); err != nil {
		return domain.Order{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		order.Status, order.ID); err != nil {
		return domain.Order{}, fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

func (r *PostgresOrderRepository) Close() error {
	return r.db.Close()
}
