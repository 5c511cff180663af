// Package report writes judgment records to CSV and JSON files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"cerebunit/internal/model"
)

const (
	ScoresCSVFile  = "scores.csv"
	ScoresJSONFile = "scores.json"
)

var csvHeader = []string{
	"id", "created_at_utc", "test", "model", "score", "passed",
	"prediction_hz", "observation", "dt", "celsius", "tstop", "v_init", "description",
}

// Summary counts passes and failures per test.
type Summary struct {
	Test   string `json:"test"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

func Summarize(records []model.ScoreRecord) []Summary {
	index := make(map[string]int)
	var out []Summary
	for _, r := range records {
		i, ok := index[r.Test]
		if !ok {
			i = len(out)
			index[r.Test] = i
			out = append(out, Summary{Test: r.Test})
		}
		if r.Score == 0 {
			out[i].Passed++
		} else {
			out[i].Failed++
		}
	}
	return out
}

func WriteCSV(w io.Writer, records []model.ScoreRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := writer.Write([]string{
			r.ID,
			r.CreatedAtUTC.UTC().Format(time.RFC3339),
			r.Test,
			r.Model,
			strconv.Itoa(r.Score),
			strconv.FormatBool(r.Score == 0),
			strconv.FormatFloat(r.PredictionHz, 'f', -1, 64),
			r.Observation,
			strconv.FormatFloat(r.Simulation.DT, 'f', -1, 64),
			strconv.FormatFloat(r.Simulation.Celsius, 'f', -1, 64),
			strconv.FormatFloat(r.Simulation.TStop, 'f', -1, 64),
			strconv.FormatFloat(r.Simulation.VInit, 'f', -1, 64),
			r.Description,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteJSON(w io.Writer, records []model.ScoreRecord) error {
	payload := struct {
		Summary []Summary           `json:"summary"`
		Scores  []model.ScoreRecord `json:"scores"`
	}{
		Summary: Summarize(records),
		Scores:  records,
	}
	if payload.Scores == nil {
		payload.Scores = []model.ScoreRecord{}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Export writes scores.csv and scores.json into dir and returns dir.
func Export(dir string, records []model.ScoreRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, ScoresCSVFile), func(w io.Writer) error { return WriteCSV(w, records) }); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(dir, ScoresJSONFile), func(w io.Writer) error { return WriteJSON(w, records) }); err != nil {
		return "", err
	}
	return dir, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
