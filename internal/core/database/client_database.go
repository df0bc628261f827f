package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/markdave123-py/LoanAdvisor/internal/config"
	"github.com/markdave123-py/LoanAdvisor/internal/core"
	"github.com/markdave123-py/LoanAdvisor/internal/models"
)

type DatabaseClient struct {
	db *sqlx.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	return Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
}

// Open connects with the given driver ("pgx" or "sqlite3"), pings the
// database and bootstraps the schema.
func Open(ctx context.Context, driver, dsn string) (*DatabaseClient, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	switch driver {
	case DriverSQLite:
		// One long-lived connection: sqlite serializes writers, and an
		// in-memory database lives only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		db.SetConnMaxIdleTime(10 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	var taken int
	if err := tx.GetContext(ctx, &taken, tx.Rebind(`SELECT COUNT(*) FROM users WHERE username = ?`), user.Username); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check username: %w", err)
	}
	if taken > 0 {
		_ = tx.Rollback()
		return fmt.Errorf("username %q: %w", user.Username, ErrConflict)
	}

	const q = `
		INSERT INTO users (id, username, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, tx.Rebind(q),
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt); err != nil {
		_ = tx.Rollback()
		// A concurrent registration can win between the check and the insert.
		if _, lookupErr := c.GetUserByUsername(ctx, user.Username); lookupErr == nil {
			return fmt.Errorf("username %q: %w", user.Username, ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const q = `
		SELECT id, username, email, password_hash, created_at
		FROM users WHERE username = ?
	`
	var u models.User
	err := c.db.GetContext(ctx, &u, c.db.Rebind(q), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Applications

func (c *DatabaseClient) CreateApplication(ctx context.Context, app *models.Application) error {
	if app == nil {
		return errors.New("nil application")
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	if app.Visibility == "" {
		app.Visibility = models.VisibilityPublic
		if app.UserID != "" {
			app.Visibility = models.VisibilityPrivate
		}
	}

	const q = `
		INSERT INTO applications (id, user_id, visibility, fields, created_at)
		VALUES (:id, :user_id, :visibility, :fields, :created_at)
	`
	if _, err := c.db.NamedExecContext(ctx, q, app); err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (c *DatabaseClient) GetApplicationByID(ctx context.Context, id string) (*models.Application, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	const q = `
		SELECT id, user_id, visibility, fields, created_at
		FROM applications
		WHERE id = ?
	`
	var app models.Application
	err = c.db.GetContext(ctx, &app, c.db.Rebind(q), parsed.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return &app, nil
}

// ListApplications returns the owner's applications, or every application
// when ownerID is empty, newest first.
func (c *DatabaseClient) ListApplications(ctx context.Context, ownerID string) ([]models.Application, error) {
	q := `SELECT id, user_id, visibility, fields, created_at FROM applications`
	var args []any
	if ownerID != "" {
		q += ` WHERE user_id = ?`
		args = append(args, ownerID)
	}
	q += ` ORDER BY created_at DESC`

	out := []models.Application{}
	if err := c.db.SelectContext(ctx, &out, c.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

// Chats

func (c *DatabaseClient) CreateChatTurn(ctx context.Context, turn *models.ChatTurn) error {
	if turn == nil {
		return errors.New("nil chat turn")
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	const q = `
		INSERT INTO chats (id, application_id, question, response, formatted_response, created_at)
		VALUES (:id, :application_id, :question, :response, :formatted_response, :created_at)
	`
	if _, err := c.db.NamedExecContext(ctx, q, turn); err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}
	return nil
}

// GetChatHistory returns the application's chat turns oldest first. Unknown
// or malformed ids yield an empty history.
func (c *DatabaseClient) GetChatHistory(ctx context.Context, applicationID string) ([]models.ChatTurn, error) {
	out := []models.ChatTurn{}
	parsed, err := uuid.Parse(applicationID)
	if err != nil {
		return out, nil
	}

	const q = `
		SELECT id, application_id, question, response, formatted_response, created_at
		FROM chats
		WHERE application_id = ?
		ORDER BY created_at ASC
	`
	if err := c.db.SelectContext(ctx, &out, c.db.Rebind(q), parsed.String()); err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	return out, nil
}

func (c *DatabaseClient) CreateAdminChatTurn(ctx context.Context, turn *models.AdminChatTurn) error {
	if turn == nil {
		return errors.New("nil admin chat turn")
	}
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	const q = `
		INSERT INTO admin_chats (id, admin_id, question, response, formatted_response, created_at)
		VALUES (:id, :admin_id, :question, :response, :formatted_response, :created_at)
	`
	if _, err := c.db.NamedExecContext(ctx, q, turn); err != nil {
		return fmt.Errorf("insert admin chat turn: %w", err)
	}
	return nil
}

// Sessions

func (c *DatabaseClient) CreateSession(ctx context.Context, s *models.Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	const q = `
		INSERT INTO sessions (id, user_id, username, expires_at)
		VALUES (:id, :user_id, :username, :expires_at)
	`
	if _, err := c.db.NamedExecContext(ctx, q, s); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (c *DatabaseClient) GetSession(ctx context.Context, id string) (*models.Session, error) {
	const q = `SELECT id, user_id, username, expires_at FROM sessions WHERE id = ?`
	var s models.Session
	err := c.db.GetContext(ctx, &s, c.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &s, nil
}

func (c *DatabaseClient) DeleteSession(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (c *DatabaseClient) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, c.db.Rebind(`DELETE FROM sessions WHERE expires_at <= ?`), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
