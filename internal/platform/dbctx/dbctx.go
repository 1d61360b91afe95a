package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries a request context and an optional transaction. Repos fall
// back to their own handle when Tx is nil.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

func New(ctx context.Context) Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return Context{Ctx: ctx}
}

func (c Context) WithTx(tx *gorm.DB) Context {
	c.Tx = tx
	return c
}

// DB returns the transaction if one is set, otherwise fallback, bound to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return t.WithContext(ctx)
}
