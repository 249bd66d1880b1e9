package currency

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lisenok-cargo/cargomanager/internal/models/errs"
	"github.com/lisenok-cargo/cargomanager/pkg/logger"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

type Repo struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRepository(db *sql.DB, logger logger.Logger) (*Repo, error) {
	if db == nil {
		return nil, errors.New("nil dependency: database")
	}

	return &Repo{db: db, logger: logger}, nil
}

var _ Repository = (*Repo)(nil)

// GetRates reads the rate table keyed by target currency code.
func (r *Repo) GetRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	const query = "SELECT currency_code, rate FROM currency_rates"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err = rows.Close(); err != nil {
			r.logger.Errorf("close rows: %s", err)
		}
	}()

	rates := make(map[string]decimal.Decimal)

	for rows.Next() {
		var code string
		var rate decimal.Decimal
		if err = rows.Scan(&code, &rate); err != nil {
			return nil, err
		}
		rates[code] = rate
	}

	// Rows.Err will report the last error encountered by Rows.Scan.
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(rates) == 0 {
		return nil, errs.ErrNotFound
	}

	return rates, nil
}
