package db

import (
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
)

func newTracer(withParams bool) pgx.QueryTracer {
	opts := []otelpgx.Option{otelpgx.WithTrimSQLInSpanName()}
	if withParams {
		opts = append(opts, otelpgx.WithIncludeQueryParameters())
	}
	return otelpgx.NewTracer(opts...)
}
