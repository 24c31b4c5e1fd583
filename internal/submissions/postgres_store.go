package submissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type pgExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresStore writes submissions to the contact_submissions table created
// by the migrations package.
type PostgresStore struct {
	db pgExecer
}

// NewPostgresStore wraps a pgx pool (or anything with its Exec signature).
func NewPostgresStore(db pgExecer) *PostgresStore {
	if db == nil {
		panic("submissions: pgx pool required")
	}
	return &PostgresStore{db: db}
}

const insertSubmissionSQL = `
	INSERT INTO contact_submissions
		(id, name, email, phone, status, source, user_agent, source_url, client_ip, submitted_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// Save inserts one row.
func (s *PostgresStore) Save(ctx context.Context, sub *Submission) error {
	if sub == nil {
		return errors.New("submissions: submission cannot be nil")
	}

	ctx, span := storeTracer.Start(ctx, "submissions.postgres.insert")
	defer span.End()
	span.SetAttributes(attribute.String("submission.id", sub.ID))

	tag, err := s.db.Exec(ctx, insertSubmissionSQL,
		sub.ID,
		sub.Name,
		sub.Email,
		sub.Phone,
		string(sub.Status),
		sub.Source,
		sub.UserAgent,
		sub.SourceURL,
		sub.ClientIP,
		sub.SubmittedAt,
		time.Unix(sub.ExpiresAt, 0).UTC(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return fmt.Errorf("submissions: insert failed: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("submissions: insert affected %d rows", tag.RowsAffected())
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
