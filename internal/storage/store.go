package storage

import (
	"context"

	"cerebunit/internal/model"
)

// Store persists judgment records.
type Store interface {
	Init(ctx context.Context) error
	SaveScore(ctx context.Context, record model.ScoreRecord) error
	GetScore(ctx context.Context, id string) (model.ScoreRecord, bool, error)
	ListScores(ctx context.Context, filter ScoreFilter) ([]model.ScoreRecord, error)
	Reset(ctx context.Context) error
}

// ScoreFilter narrows ListScores. Empty fields match everything; Limit <= 0
// means no limit. Results are newest first.
type ScoreFilter struct {
	Test  string
	Model string
	Limit int
}

func (f ScoreFilter) matches(record model.ScoreRecord) bool {
	if f.Test != "" && record.Test != f.Test {
		return false
	}
	if f.Model != "" && record.Model != f.Model {
		return false
	}
	return true
}
