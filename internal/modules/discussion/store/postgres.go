package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/discussion/domain"

	"github.com/eskrenkovic/tql"
)

// PostgresStore keeps one row per discussion with the whole document as
// JSONB. Mutate serializes per-discussion through a row lock, which gives
// the same total order the in-memory store gets from its per-entry mutex -
// including across server instances sharing the database.
type PostgresStore struct {
	db *sql.DB
}

type discussionRow struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Document []byte `db:"document"`
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db}
}

func (s *PostgresStore) Create(ctx context.Context, name string) (domain.Discussion, error) {
	document := domain.NewDiscussion(name)

	payload, err := json.Marshal(document)
	if err != nil {
		return domain.Discussion{}, err
	}

	row := discussionRow{
		ID:       document.ID,
		Name:     document.Name,
		Document: payload,
	}

	const stmt = `
		INSERT INTO
			discussion (id, name, document)
		VALUES
			(:id, :name, :document);`
	if _, err := tql.Exec(ctx, s.db, stmt, row); err != nil {
		return domain.Discussion{}, err
	}

	return document, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Discussion, error) {
	const query = `
		SELECT
			id, name, document
		FROM
			discussion
		WHERE
			id = $1;`
	rows, err := tql.Query[discussionRow](ctx, s.db, query, id)
	if err != nil {
		return domain.Discussion{}, err
	}

	if len(rows) == 0 {
		return domain.Discussion{}, domain.ErrDiscussionNotFound
	}

	var document domain.Discussion
	if err := json.Unmarshal(rows[0].Document, &document); err != nil {
		return domain.Discussion{}, err
	}

	return document, nil
}

func (s *PostgresStore) Mutate(ctx context.Context, id string, fn MutateFunc) (domain.Discussion, error) {
	var result domain.Discussion

	err := core.Tx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		const query = `
			SELECT
				id, name, document
			FROM
				discussion
			WHERE
				id = $1
			FOR UPDATE;`
		rows, err := tql.Query[discussionRow](ctx, tx, query, id)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			return domain.ErrDiscussionNotFound
		}

		var current domain.Discussion
		if err := json.Unmarshal(rows[0].Document, &current); err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		payload, err := json.Marshal(next)
		if err != nil {
			return err
		}

		const stmt = `
			UPDATE
				discussion
			SET
				document = $2, updated_at = now()
			WHERE
				id = $1;`
		if _, err := tx.ExecContext(ctx, stmt, id, payload); err != nil {
			return err
		}

		result = next
		return nil
	})
	if err != nil {
		return domain.Discussion{}, err
	}

	return result, nil
}
