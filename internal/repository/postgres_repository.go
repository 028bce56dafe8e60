package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidTextRepr     = "22P02"
	dateLayout            = "2006-01-02"
)

// isNoRow reports whether err means the id matched nothing, including ids
// that are not valid uuids.
func isNoRow(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	return isInvalidID(err)
}

func isInvalidID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqInvalidTextRepr
}

type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
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
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "eventhub_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}
	return nil
}

func (r *Repository) CreateOrder(ctx context.Context, actorID string, total decimal.Decimal) (*domain.Order, error) {
	order := &domain.Order{ActorID: actorID, TotalPrice: total}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total_price) VALUES ($1, $2) RETURNING id, created_at`,
		actorID, total,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

// CreateOrderItems inserts all items in one statement, so either every row
// lands or none does.
func (r *Repository) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	return insertOrderItems(ctx, r.db, items)
}

func (r *Repository) DeleteOrder(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if isInvalidID(err) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// PlaceOrder writes the order header and its items in one transaction.
// order.ID and order.CreatedAt are assigned by the database.
func (r *Repository) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	placed := &domain.Order{ActorID: order.ActorID, TotalPrice: order.TotalPrice}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, total_price) VALUES ($1, $2) RETURNING id, created_at`,
		order.ActorID, order.TotalPrice,
	).Scan(&placed.ID, &placed.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	placed.Items = make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = placed.ID
		placed.Items[i] = item
	}
	if err := insertOrderItems(ctx, tx, placed.Items); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return placed, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOrderItems(ctx context.Context, db execer, items []domain.OrderItem) error {
	if len(items) == 0 {
		return ErrEmptyOrderItems
	}

	var b strings.Builder
	b.WriteString(`INSERT INTO order_items (order_id, event_id, quantity, price) VALUES `)
	args := make([]any, 0, len(items)*4)
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		n := i * 4
		fmt.Fprintf(&b, "($%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4)
		args = append(args, item.OrderID, item.ItemID, item.Quantity, item.UnitPriceAtPurchase)
	}

	if _, err := db.ExecContext(ctx, b.String(), args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, total_price, created_at FROM orders WHERE id = $1`, orderID,
	).Scan(&order.ID, &order.ActorID, &order.TotalPrice, &order.CreatedAt)
	if isNoRow(err) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	items, err := r.orderItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return &order, nil
}

func (r *Repository) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, event_id, quantity, price FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ItemID, &item.Quantity, &item.UnitPriceAtPurchase); err != nil {
			return nil, fmt.Errorf("scan order item row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return items, nil
}

func (r *Repository) ListOrdersByActor(ctx context.Context, actorID string) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, total_price, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		actorID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.ActorID, &order.TotalPrice, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		items, err := r.orderItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

const eventColumns = `e.id, e.vendor_id, COALESCE(NULLIF(p.business_name, ''), p.full_name), e.name, e.description, e.date, e.price, e.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	var e domain.Event
	if err := row.Scan(&e.ID, &e.VendorID, &e.VendorName, &e.Name, &e.Description, &e.Date, &e.Price, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events e JOIN profiles p ON p.id = e.vendor_id ORDER BY e.date ASC, e.created_at ASC`)
}

func (r *Repository) ListEventsByVendor(ctx context.Context, vendorID string) ([]*domain.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events e JOIN profiles p ON p.id = e.vendor_id
		 WHERE e.vendor_id = $1 ORDER BY e.date DESC, e.created_at DESC`, vendorID)
}

func (r *Repository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events e JOIN profiles p ON p.id = e.vendor_id WHERE e.id = $1`, id))
	if isNoRow(err) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query event by id: %w", err)
	}
	return e, nil
}

func (r *Repository) CreateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO events (vendor_id, name, description, date, price) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		event.VendorID, event.Name, event.Description, event.Date.Format(dateLayout), event.Price,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return r.GetEvent(ctx, id)
}

func (r *Repository) UpdateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE events SET name = $2, description = $3, date = $4, price = $5 WHERE id = $1`,
		event.ID, event.Name, event.Description, event.Date.Format(dateLayout), event.Price)
	if isInvalidID(err) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	} else if n == 0 {
		return nil, ErrEventNotFound
	}
	return r.GetEvent(ctx, event.ID)
}

func (r *Repository) DeleteEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if isInvalidID(err) {
		return ErrEventNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return ErrEventHasOrders
		}
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// CreateProfile inserts a profile row. In production the auth backend's
// sign-up hook owns this; the method exists for seeding and tests.
func (r *Repository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	role := profile.Role
	if role == "" {
		role = domain.RoleUser
	}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO profiles (id, email, full_name, business_name, role) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		profile.ID, profile.Email, profile.FullName, profile.BusinessName, string(role),
	).Scan(&profile.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("profile %s already exists: %w", profile.ID, err)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	profile.Role = role
	return nil
}

func (r *Repository) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, full_name, business_name, role, created_at FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.FullName, &p.BusinessName, &role, &p.CreatedAt)
	if isNoRow(err) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile by id: %w", err)
	}
	p.Role = domain.Role(role)
	return &p, nil
}

func (r *Repository) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, email, full_name, business_name, role, created_at FROM profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		var p domain.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Email, &p.FullName, &p.BusinessName, &role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		p.Role = domain.Role(role)
		profiles = append(profiles, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return profiles, nil
}

func (r *Repository) ListVendorOrders(ctx context.Context, vendorID string) ([]*domain.VendorOrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, e.id, e.name, p.full_name, oi.quantity, oi.price, o.created_at
		 FROM order_items oi
		 JOIN events e ON e.id = oi.event_id
		 JOIN orders o ON o.id = oi.order_id
		 JOIN profiles p ON p.id = o.user_id
		 WHERE e.vendor_id = $1
		 ORDER BY o.created_at DESC, oi.id`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("query vendor orders: %w", err)
	}
	defer rows.Close()

	var lines []*domain.VendorOrderLine
	for rows.Next() {
		var l domain.VendorOrderLine
		if err := rows.Scan(&l.OrderID, &l.EventID, &l.EventName, &l.CustomerName, &l.Quantity, &l.Price, &l.OrderedAt); err != nil {
			return nil, fmt.Errorf("scan vendor order row: %w", err)
		}
		lines = append(lines, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *Repository) ListOrderSummaries(ctx context.Context) ([]*domain.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT o.id, o.user_id, o.total_price, o.created_at, p.full_name, COUNT(oi.id)
		 FROM orders o
		 JOIN profiles p ON p.id = o.user_id
		 LEFT JOIN order_items oi ON oi.order_id = o.id
		 GROUP BY o.id, p.full_name
		 ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query order summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*domain.OrderSummary
	for rows.Next() {
		var s domain.OrderSummary
		if err := rows.Scan(&s.ID, &s.ActorID, &s.TotalPrice, &s.CreatedAt, &s.CustomerName, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("scan order summary row: %w", err)
		}
		summaries = append(summaries, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return summaries, nil
}

func (r *Repository) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	var s domain.PlatformStats
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM profiles), (SELECT COUNT(*) FROM events), (SELECT COUNT(*) FROM orders)`,
	).Scan(&s.Users, &s.Events, &s.Orders)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("query platform stats: %w", err)
	}
	return s, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}
