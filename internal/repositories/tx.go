package repositories

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

type txState struct {
	db    *gorm.DB
	after []func()
}

// Transactor runs fn in one database transaction. Repositories called with the ctx passed
// to fn join that transaction; nested calls reuse the outer one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*txState); ok {
		return fn(ctx)
	}

	st := &txState{}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st.db = tx
		return fn(context.WithValue(ctx, txKey{}, st))
	})
	if err != nil {
		return err
	}
	for _, f := range st.after {
		f()
	}
	return nil
}

// AfterCommit defers f until the surrounding transaction commits. Outside a transaction f
// runs immediately; on rollback it never runs.
func AfterCommit(ctx context.Context, f func()) {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		st.after = append(st.after, f)
		return
	}
	f()
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if st, ok := ctx.Value(txKey{}).(*txState); ok {
		return st.db
	}
	return db.WithContext(ctx)
}
