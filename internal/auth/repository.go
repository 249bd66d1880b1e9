package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/internal/models/user"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
)

type Repository interface {
	GetUserByID(ctx context.Context, userID int) (*user.User, error)
	GetUserByLogin(ctx context.Context, login string) (*user.User, error)
	CreateUser(ctx context.Context, login, password string) (id int, err error)
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

func (r *Repo) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	u := new(user.User)

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Login,
		&u.Password,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}

	return u, nil
}

func (r *Repo) GetUserByID(ctx context.Context, userID int) (*user.User, error) {
	const query = "SELECT id, login, password, created_at, updated_at FROM users WHERE id = $1"
	return r.getUser(ctx, query, userID)
}

func (r *Repo) GetUserByLogin(ctx context.Context, login string) (*user.User, error) {
	const query = "SELECT id, login, password, created_at, updated_at FROM users WHERE login = $1"
	return r.getUser(ctx, query, login)
}

func (r *Repo) CreateUser(ctx context.Context, login, password string) (int, error) {
	const query = "INSERT INTO users (login, password) VALUES ($1, $2) RETURNING id"

	var id int

	err := r.getter.DefaultTrOrDB(ctx, r.db).QueryRowContext(ctx, query, login, password).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return -1, errs.ErrDataConflict
		}
		return -1, fmt.Errorf("create user: %w", err)
	}

	return id, nil
}
