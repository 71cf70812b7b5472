package pgsql

import (
	"errors"
	"testing"

	"github.com/dranzd/storebunk-accounting/internal/apperrors"
	"github.com/dranzd/storebunk-accounting/internal/eventstore"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapInsertError(t *testing.T) {
	r := eventstore.Record{EventID: "e1", Version: 3}

	tests := []struct {
		name    string
		err     error
		want    error
		wantNot []error
	}{
		{
			name: "version taken",
			err:  &pgconn.PgError{Code: uniqueViolation, ConstraintName: "journal_events_stream_version_key"},
			want: apperrors.ErrConcurrency,
		},
		{
			name:    "event id reused",
			err:     &pgconn.PgError{Code: uniqueViolation, ConstraintName: eventIDConstraint},
			want:    apperrors.ErrDuplicate,
			wantNot: []error{apperrors.ErrConcurrency},
		},
		{
			name:    "other pg error",
			err:     &pgconn.PgError{Code: "23502"},
			wantNot: []error{apperrors.ErrConcurrency, apperrors.ErrDuplicate},
		},
		{
			name:    "non pg error",
			err:     errors.New("connection reset"),
			wantNot: []error{apperrors.ErrConcurrency, apperrors.ErrDuplicate},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapInsertError("journal-entry-1", r, tt.err)
			if tt.want != nil {
				assert.ErrorIs(t, got, tt.want)
			}
			for _, e := range tt.wantNot {
				assert.NotErrorIs(t, got, e)
			}
		})
	}
}
