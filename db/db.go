package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/nemopss/carbon-tracker/backend/models"
)

const minPasswordLength = 6

var (
	ErrShortPassword = errors.New("password must be at least 6 characters")
	ErrEmailTaken    = errors.New("email already registered")
	ErrNotFound      = errors.New("not found")
)

const transactionColumns = `id, user_id, description, amount, currency, category, carbon_footprint,
	emission_factor, factor_source, confidence_score, merchant, payment_type, created_at`

type Storage struct {
	DB *sql.DB
}

// NewStorage connects to Postgres and applies pending migrations.
func NewStorage(connStr string) (*Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(connStr); err != nil {
		db.Close()
		return nil, err
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() {
	s.DB.Close()
}

func (s *Storage) CreateUser(ctx context.Context, input models.CreateUser) (*models.User, error) {
	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Firstname: input.Firstname,
		Lastname:  input.Lastname,
		Email:     normalizeEmail(input.Email),
		Password:  hash,
	}
	err = s.DB.QueryRowContext(ctx,
		"INSERT INTO users (firstname, lastname, email, password) VALUES ($1, $2, $3, $4) RETURNING id",
		user.Firstname, user.Lastname, user.Email, user.Password,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUserByEmail returns nil, nil when no user has that email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, firstname, lastname, email, password FROM users WHERE email = $1", normalizeEmail(email))
}

// GetUserByID returns nil, nil when the user does not exist.
func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return s.getUser(ctx, "SELECT id, firstname, lastname, email, password FROM users WHERE id = $1", id)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

// UpdateProfile changes the user's names. The email is never modified.
func (s *Storage) UpdateProfile(ctx context.Context, id int, input models.UpdateProfile) (*models.User, error) {
	var u models.User
	err := s.DB.QueryRowContext(ctx,
		`UPDATE users SET firstname = $1, lastname = $2 WHERE id = $3
		RETURNING id, firstname, lastname, email, password`,
		input.Firstname, input.Lastname, id,
	).Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// CreateTransaction inserts an already enriched transaction and sets its ID.
func (s *Storage) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO transactions (user_id, description, amount, currency, category, carbon_footprint,
		emission_factor, factor_source, confidence_score, merchant, payment_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		t.UserID, t.Description, t.Amount, t.Currency, nullableString(t.Category), t.CarbonFootprint,
		t.EmissionFactor, t.FactorSource, t.ConfidenceScore, t.Merchant, nullableString(t.PaymentType), t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns every transaction of the user, newest first.
func (s *Storage) ListTransactions(ctx context.Context, userID int) ([]models.Transaction, error) {
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC",
		userID)
}

// FetchRange returns the user's transactions created in [start, end], newest first.
func (s *Storage) FetchRange(ctx context.Context, userID int, start, end time.Time) ([]models.Transaction, error) {
	// Postgres rounds timestamps to microseconds, which would carry an
	// end-of-day bound of 23:59:59.999999999 over to the next midnight.
	end = end.Truncate(time.Microsecond)
	return s.queryTransactions(ctx,
		"SELECT "+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at DESC, id DESC`,
		userID, start, end)
}

// SumFootprintRange sums stored footprints created in [start, end).
func (s *Storage) SumFootprintRange(ctx context.Context, userID int, start, end time.Time) (float64, error) {
	var sum float64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(carbon_footprint), 0) FROM transactions
		WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
		userID, start, end,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum footprint: %w", err)
	}
	return sum, nil
}

func (s *Storage) queryTransactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var transactions = []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return transactions, nil
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var (
		t           models.Transaction
		amount      sql.NullFloat64
		category    sql.NullString
		footprint   sql.NullFloat64
		factor      sql.NullFloat64
		source      sql.NullString
		confidence  sql.NullFloat64
		merchant    sql.NullString
		paymentType sql.NullString
	)
	err := rows.Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.Currency, &category, &footprint,
		&factor, &source, &confidence, &merchant, &paymentType, &t.CreatedAt)
	if err != nil {
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	t.Amount = floatPtr(amount)
	t.CarbonFootprint = floatPtr(footprint)
	t.EmissionFactor = floatPtr(factor)
	t.ConfidenceScore = floatPtr(confidence)
	t.FactorSource = stringPtr(source)
	t.Merchant = stringPtr(merchant)
	if category.Valid {
		c := models.Category(category.String)
		t.Category = &c
	}
	if paymentType.Valid {
		p := models.PaymentType(paymentType.String)
		t.PaymentType = &p
	}
	return t, nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullableString[T ~string](v *T) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
