package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.uber.org/multierr"
)

// ErrorDump flattens an error chain into loggable fields.
type ErrorDump struct {
	TopMessage     string
	Code           Code
	Retryable      bool
	// UpstreamStatus is the HTTP status reported by a gateway or storefront
	// error found in the chain; 0 when none was.
	UpstreamStatus int
	Chain          []string
	PG             *PGDetails
}

// PGDetails carries the Postgres fields of a driver error.
type PGDetails struct {
	Code       string
	Constraint string
	Table      string
	Column     string
	Detail     string
	Message    string
}

type statusCarrier interface {
	HTTPStatus() int
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{
		TopMessage: err.Error(),
		Retryable:  IsRetryable(err),
		Chain:      chain(err, nil),
		PG:         pgDetails(err),
	}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	var sc statusCarrier
	if errors.As(err, &sc) {
		d.UpstreamStatus = sc.HTTPStatus()
	}
	return d
}

// Fields renders the dump for structured logging, omitting empty parts.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_chain": d.Chain,
		"retryable":   d.Retryable,
	}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if d.UpstreamStatus != 0 {
		fields["upstream_status"] = d.UpstreamStatus
	}
	if d.PG != nil {
		fields["pg_code"] = d.PG.Code
		fields["pg_constraint"] = d.PG.Constraint
		fields["pg_table"] = d.PG.Table
		fields["pg_column"] = d.PG.Column
		fields["pg_detail"] = d.PG.Detail
		fields["pg_message"] = d.PG.Message
	}
	return fields
}

// chain walks single wraps and expands aggregated errors.
func chain(err error, out []string) []string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, fmt.Sprintf("%T: %v", e, e))
		if parts := multierr.Errors(e); len(parts) > 1 {
			for _, p := range parts {
				out = chain(p, out)
			}
			return out
		}
	}
	return out
}

func pgDetails(err error) *PGDetails {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGDetails{
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDetails{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
