package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"screw-inspection/domain/repositories"
	"screw-inspection/pkg/apperrors"
)

type txKey struct{}

type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) repositories.Transactor {
	return &TransactionManager{db: db}
}

// WithinTransaction joins an enclosing transaction when ctx already carries one.
func (m *TransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// notFound maps gorm.ErrRecordNotFound to apperrors.ErrNotFound and any other
// error to a storage failure.
func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("%s not found", what)
	}
	return apperrors.Storage("load "+what, err)
}
