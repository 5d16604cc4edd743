// internal/syncer/convert.go
package syncer

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"gibwerk/internal/database"
	"gibwerk/internal/model"
)

func toUpsertCommitParams(c model.Commit) database.UpsertCommitParams {
	return database.UpsertCommitParams{
		Hash:       c.Hash,
		Repository: c.Repository,
		Author:     c.Author,
		Date:       toTimestamptz(c.Date),
		Message:    c.Message,
		Summary:    toText(c.Summary),
		Diff:       toText(c.Diff),
	}
}

func toModelCommit(row database.Commit) model.Commit {
	return model.Commit{
		ID:               row.ID,
		Hash:             row.Hash,
		Author:           row.Author,
		Date:             row.Date.Time.UTC(),
		Message:          row.Message,
		Summary:          fromText(row.Summary),
		Diff:             fromText(row.Diff),
		GeneratedSummary: fromText(row.GeneratedSummary),
		Repository:       row.Repository,
	}
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return model.StringPtr(t.String)
}

func toTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func toDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}
