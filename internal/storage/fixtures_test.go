package storage

import (
	"time"

	"cerebunit/internal/model"
)

func scoreRecord(id, test, modelName string, score int, at time.Time) model.ScoreRecord {
	return Stamp(model.ScoreRecord{
		ID:           id,
		Test:         test,
		Model:        modelName,
		Score:        score,
		Description:  "fixture",
		PredictionHz: 40,
		Observation:  "40 Hz",
		Simulation:   model.DefaultSimulationProperties(),
		CreatedAtUTC: at,
	})
}

func ids(records []model.ScoreRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
