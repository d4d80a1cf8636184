// Package storage opens the account and transaction repositories selected by the config.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/conta/internal/account"
	accountMem "github.com/MrJamesThe3rd/conta/internal/account/memstore"
	accountStore "github.com/MrJamesThe3rd/conta/internal/account/store"
	"github.com/MrJamesThe3rd/conta/internal/config"
	"github.com/MrJamesThe3rd/conta/internal/database"
	"github.com/MrJamesThe3rd/conta/internal/transaction"
	txMem "github.com/MrJamesThe3rd/conta/internal/transaction/memstore"
	txStore "github.com/MrJamesThe3rd/conta/internal/transaction/store"
)

type Storage struct {
	Accounts     account.Repository
	Transactions transaction.Repository

	db *sql.DB
}

// Open connects to postgres and applies the schema, or builds in-memory stores when
// cfg.Ledger.Storage is "memory".
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg.Ledger.Storage == config.StorageMemory {
		slog.Warn("using in-memory storage, data is lost on exit")

		return &Storage{
			Accounts:     accountMem.New(),
			Transactions: txMem.New(),
		}, nil
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &Storage{
		Accounts:     accountStore.New(db),
		Transactions: txStore.New(db),
		db:           db,
	}, nil
}

func (s *Storage) Close() {
	if s.db == nil {
		return
	}

	if err := s.db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}
