package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/datingassistent/payments/internal/domain/errors"
	"github.com/datingassistent/payments/internal/domain/model"
	"github.com/datingassistent/payments/internal/domain/repository"
)

// pgxPool is the subset of pgxpool.Pool used by the storage, extracted so
// tests can substitute a mock pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type orderRepository struct {
	storage *Storage
}

type userRepository struct {
	storage *Storage
}

type couponRepository struct {
	storage *Storage
}

type outboxRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Coupons() repository.CouponRepository {
	return &couponRepository{storage: s}
}

func (s *Storage) Outbox() repository.OutboxRepository {
	return &outboxRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            email TEXT UNIQUE NOT NULL,
            name TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            subscription_type TEXT,
            subscription_status TEXT,
            subscription_started_at TIMESTAMPTZ,
            subscription_expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
            package_type TEXT NOT NULL,
            billing_period TEXT NOT NULL,
            amount BIGINT NOT NULL,
            currency TEXT NOT NULL,
            status TEXT NOT NULL,
            payment_provider TEXT NOT NULL,
            linked_to_user BOOLEAN NOT NULL DEFAULT FALSE,
            customer_email TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS coupons (
            id SERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            max_uses INTEGER,
            used_count INTEGER NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            valid_from TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            valid_until TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS coupon_usage (
            id SERIAL PRIMARY KEY,
            coupon_id BIGINT NOT NULL REFERENCES coupons(id) ON DELETE CASCADE,
            order_id TEXT NOT NULL,
            used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS outbox_events (
            id SERIAL PRIMARY KEY,
            order_id TEXT NOT NULL REFERENCES orders(id),
            event_type TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            attempts INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            claimed_at TIMESTAMPTZ,
            processed_at TIMESTAMPTZ,
            UNIQUE(order_id, event_type)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer_email ON orders(customer_email)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events(status, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// statusPriorityCase mirrors model.OrderStatus.Priority so the conditional
// status update can compare priorities inside a single SQL statement.
const statusPriorityCase = `CASE status
        WHEN 'initialized' THEN 1
        WHEN 'uncleared' THEN 3
        WHEN 'cancelled' THEN 5
        WHEN 'expired' THEN 5
        WHEN 'declined' THEN 5
        WHEN 'void' THEN 5
        WHEN 'partial_refunded' THEN 8
        WHEN 'refunded' THEN 9
        WHEN 'completed' THEN 10
        WHEN 'paid' THEN 10
        ELSE 0 END`

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (
                       id, user_id, package_type, billing_period, amount, currency,
                       status, payment_provider, linked_to_user, customer_email
                   ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING created_at, updated_at`
	err := r.storage.pool.QueryRow(ctx, query,
		order.ID, order.UserID, order.PackageType, string(order.BillingPeriod),
		order.Amount, order.Currency, string(order.Status), order.PaymentProvider,
		order.LinkedToUser, order.CustomerEmail,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	const query = `SELECT id, user_id, package_type, billing_period, amount, currency,
                          status, payment_provider, linked_to_user, customer_email,
                          created_at, updated_at
                   FROM orders WHERE id=$1`
	var o model.Order
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.PackageType, &o.BillingPeriod, &o.Amount, &o.Currency,
		&o.Status, &o.PaymentProvider, &o.LinkedToUser, &o.CustomerEmail,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ApplyStatus performs the reconciliation write. The row is locked for the
// duration of the transaction, the duplicate check short-circuits before any
// write, and the update itself is still conditioned on the priority
// comparison so concurrent deliveries cannot interleave a downgrade.
func (r *orderRepository) ApplyStatus(ctx context.Context, orderID string, incoming model.OrderStatus) (model.ApplyOutcome, error) {
	outcome := model.ApplyOutcomeSuperseded
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		var current model.OrderStatus
		err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if current == incoming {
			outcome = model.ApplyOutcomeDuplicate
			return nil
		}

		updateQuery := `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1 AND ` + statusPriorityCase + ` < $3`
		tag, err := tx.Exec(ctx, updateQuery, orderID, string(incoming), incoming.Priority())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			outcome = model.ApplyOutcomeSuperseded
			return nil
		}

		outcome = model.ApplyOutcomeApplied
		if incoming.IsPaid() {
			const enqueue = `INSERT INTO outbox_events (order_id, event_type)
                             VALUES ($1, $2)
                             ON CONFLICT (order_id, event_type) DO NOTHING`
			if _, err := tx.Exec(ctx, enqueue, orderID, model.EventPaymentConfirmed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return outcome, err
	}
	return outcome, nil
}

func (r *orderRepository) LinkToUser(ctx context.Context, orderID string, userID int64) (bool, error) {
	const query = `UPDATE orders
                   SET user_id=$2, linked_to_user=TRUE, updated_at=NOW()
                   WHERE id=$1 AND linked_to_user=FALSE`
	tag, err := r.storage.pool.Exec(ctx, query, orderID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, email, name, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (email, name, password_hash) VALUES ($1, $2, $3)
                   RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email, name, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Email = email
	u.Name = name
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, email, name, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) UpdateSubscription(ctx context.Context, userID int64, sub model.Subscription) error {
	const query = `UPDATE users
                   SET subscription_type=$2,
                       subscription_status=$3,
                       subscription_started_at=$4,
                       subscription_expires_at=$5,
                       updated_at=NOW()
                   WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, userID, sub.Type, sub.Status, sub.StartedAt, sub.ExpiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- CouponRepository implementation ---

func (r *couponRepository) Redeem(ctx context.Context, code, orderID string) (bool, error) {
	redeemed := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const consume = `UPDATE coupons
                         SET used_count = used_count + 1, updated_at=NOW()
                         WHERE code=$1
                           AND is_active
                           AND valid_from <= NOW()
                           AND (valid_until IS NULL OR valid_until >= NOW())
                           AND (max_uses IS NULL OR used_count < max_uses)
                         RETURNING id`
		var couponID int64
		err := tx.QueryRow(ctx, consume, code).Scan(&couponID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		const record = `INSERT INTO coupon_usage (coupon_id, order_id) VALUES ($1, $2)`
		if _, err := tx.Exec(ctx, record, couponID, orderID); err != nil {
			return err
		}
		redeemed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return redeemed, nil
}

// --- OutboxRepository implementation ---

// staleClaimAge bounds how long an in-flight claim is honored. A consumer
// that crashed after claiming leaves its events in 'processing'; once the
// claim ages past this window the events become selectable again.
const staleClaimAge = 5 * time.Minute

func (r *outboxRepository) SelectBatchForDelivery(ctx context.Context, limit int) ([]model.ConfirmationEvent, error) {
	const query = `UPDATE outbox_events
                   SET status='processing', claimed_at=NOW()
                   WHERE id IN (
                       SELECT id FROM outbox_events
                       WHERE status='pending'
                          OR (status='processing' AND claimed_at < $2)
                       ORDER BY created_at
                       LIMIT $1
                       FOR UPDATE SKIP LOCKED)
                   RETURNING id, order_id, event_type, status, attempts, created_at, processed_at`

	rows, err := r.storage.pool.Query(ctx, query, limit, time.Now().Add(-staleClaimAge))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ConfirmationEvent
	for rows.Next() {
		var e model.ConfirmationEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventType, &e.Status, &e.Attempts, &e.CreatedAt, &e.ProcessedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, eventID int64) error {
	const query = `UPDATE outbox_events SET status='delivered', processed_at=NOW() WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, eventID)
	return err
}

func (r *outboxRepository) MarkFailed(ctx context.Context, eventID int64) error {
	const query = `UPDATE outbox_events SET status='pending', attempts = attempts + 1 WHERE id=$1`
	_, err := r.storage.pool.Exec(ctx, query, eventID)
	return err
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
