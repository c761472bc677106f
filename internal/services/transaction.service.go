package services

import (
	"context"
	"fmt"

	"roomcare/internal/database"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// TransactionService wraps lifecycle mutations so their guard reads and the
// final write commit or roll back together.
type TransactionService struct {
	db  database.DB
	log logger.Logger
}

func NewTransactionService(db database.DB) *TransactionService {
	return &TransactionService{
		db:  db,
		log: logger.New("transactionService"),
	}
}

// Execute runs fn inside a database transaction, committing on success and
// rolling back on error. Panics inside fn are converted to errors after a
// successful rollback; a failed rollback re-panics since data integrity can
// no longer be guaranteed.
func (ts *TransactionService) Execute(
	ctx context.Context,
	fn func(ctx context.Context, tx *gorm.DB) error,
) (err error) {
	log := ts.log.Function("Execute")

	tx := ts.db.SQLWithContext(ctx).Begin()
	if tx.Error != nil {
		return log.Err("failed to begin transaction", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			panicErr := log.ErrMsg(fmt.Sprintf("panic during transaction: %v", r))

			if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
				log.Er("CRITICAL: failed to rollback after panic", rollbackErr, "panic", r)
				panic(fmt.Sprintf(
					"transaction rollback failed: %v (original panic: %v)",
					rollbackErr, r,
				))
			}

			err = panicErr
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			return log.Err("transaction rollback failed", rollbackErr, "originalError", err)
		}
		return err
	}

	if commitErr := tx.Commit().Error; commitErr != nil {
		return log.Err("failed to commit transaction", commitErr)
	}

	return nil
}
