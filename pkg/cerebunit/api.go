// Package cerebunit is the programmatic entry point for judging Purkinje cell
// models and browsing stored scores.
package cerebunit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"cerebunit/internal/config"
	"cerebunit/internal/logging"
	"cerebunit/internal/model"
	"cerebunit/internal/observation"
	"cerebunit/internal/quantity"
	"cerebunit/internal/replay"
	"cerebunit/internal/report"
	"cerebunit/internal/storage"
	"cerebunit/internal/validation"
)

const defaultExportsDir = "exports"

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string

	// Config supplies simulation, comparison and logging settings. Nil means
	// config.Default with environment overrides applied.
	Config *config.Config

	// Logger overrides the logger built from Config.Logging.
	Logger *slog.Logger
}

type Client struct {
	store      storage.Store
	cfg        *config.Config
	logger     *slog.Logger
	exportsDir string
}

type JudgeRequest struct {
	Test string

	// Observation is used when ObservationFile is empty.
	Observation     quantity.Quantity
	ObservationFile string

	// Model is judged directly when set; otherwise ModelCSV is replayed.
	Model     model.Model
	ModelCSV  string
	ModelName string

	OnVerdict validation.VerdictHook
}

type JudgeSummary struct {
	ID           string
	Test         string
	Model        string
	Score        int
	Passed       bool
	Description  string
	Prediction   quantity.Quantity
	PredictionHz float64
	Observation  quantity.Quantity
	CreatedAtUTC time.Time
}

type ScoresRequest struct {
	Test  string
	Model string
	Limit int
}

type ScoreItem struct {
	ID           string
	CreatedAtUTC time.Time
	Test         string
	Model        string
	Score        int
	Passed       bool
	PredictionHz float64
	Observation  string
	Description  string
}

type ExportRequest struct {
	OutDir string
	Test   string
	Model  string
}

type ExportSummary struct {
	Directory string
	Count     int
}

type TestItem struct {
	Name         string
	Description  string
	Capabilities []model.Capability
}

func New(ctx context.Context, opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = cfg.Storage.Kind
	}
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.Storage.DBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, fmt.Errorf("init %s store: %w", storeKind, err)
	}

	return &Client{
		store:      store,
		cfg:        cfg,
		logger:     logger,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Judge runs one validation test against a model and stores the score.
func (c *Client) Judge(ctx context.Context, req JudgeRequest) (JudgeSummary, error) {
	if strings.TrimSpace(req.Test) == "" {
		return JudgeSummary{}, errors.New("judge requires a test name")
	}
	obs, err := resolveObservation(req)
	if err != nil {
		return JudgeSummary{}, err
	}
	m, err := resolveModel(req)
	if err != nil {
		return JudgeSummary{}, err
	}

	var verdict *validation.Verdict
	capture := func(v validation.Verdict) { verdict = &v }

	runner, err := validation.NewRunner(req.Test, obs, validation.Config{
		Simulation: c.cfg.Simulation,
		Comparator: c.cfg.Comparison.Comparator(),
		OnVerdict:  logging.Verdicts(capture, logging.VerdictLogger(c.logger), req.OnVerdict),
		Logger:     c.logger,
	})
	if err != nil {
		return JudgeSummary{}, err
	}
	c.logger.Debug("judging model", "test", runner.Name(), "model", m.Name(), "observation", obs.String())

	s, err := runner.JudgeModel(ctx, m)
	if err != nil {
		return JudgeSummary{}, err
	}

	summary := JudgeSummary{
		ID:           uuid.NewString(),
		Test:         runner.Name(),
		Model:        m.Name(),
		Score:        s.Score,
		Passed:       s.Passed(),
		Description:  s.Description,
		Observation:  obs,
		CreatedAtUTC: time.Now().UTC(),
	}
	if verdict != nil {
		summary.Prediction = verdict.Prediction
		if hz, err := verdict.Prediction.Rescale(quantity.Hertz); err == nil {
			summary.PredictionHz = hz.Magnitude
		}
	}

	record := storage.Stamp(model.ScoreRecord{
		ID:           summary.ID,
		Test:         summary.Test,
		Model:        summary.Model,
		Score:        summary.Score,
		Description:  summary.Description,
		PredictionHz: summary.PredictionHz,
		Observation:  obs.String(),
		Simulation:   runner.Simulation(),
		CreatedAtUTC: summary.CreatedAtUTC,
	})
	if err := c.store.SaveScore(ctx, record); err != nil {
		return JudgeSummary{}, fmt.Errorf("save score: %w", err)
	}
	return summary, nil
}

func (c *Client) Scores(ctx context.Context, req ScoresRequest) ([]ScoreItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}
	records, err := c.store.ListScores(ctx, storage.ScoreFilter{Test: req.Test, Model: req.Model, Limit: req.Limit})
	if err != nil {
		return nil, err
	}
	out := make([]ScoreItem, 0, len(records))
	for _, r := range records {
		out = append(out, ScoreItem{
			ID:           r.ID,
			CreatedAtUTC: r.CreatedAtUTC,
			Test:         r.Test,
			Model:        r.Model,
			Score:        r.Score,
			Passed:       r.Score == 0,
			PredictionHz: r.PredictionHz,
			Observation:  r.Observation,
			Description:  r.Description,
		})
	}
	return out, nil
}

// Export writes every matching score to OutDir as CSV and JSON.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	records, err := c.store.ListScores(ctx, storage.ScoreFilter{Test: req.Test, Model: req.Model})
	if err != nil {
		return ExportSummary{}, err
	}
	if len(records) == 0 {
		return ExportSummary{}, errors.New("no scores available to export")
	}
	dir, err := report.Export(req.OutDir, records)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{Directory: filepath.Clean(dir), Count: len(records)}, nil
}

func (c *Client) Tests() ([]TestItem, error) {
	specs := validation.ListTests()
	out := make([]TestItem, 0, len(specs))
	for _, spec := range specs {
		runner, err := spec.Factory(quantity.New(0, quantity.Hertz), validation.Config{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", spec.Name, err)
		}
		out = append(out, TestItem{
			Name:         spec.Name,
			Description:  spec.Description,
			Capabilities: runner.RequiredCapabilities(),
		})
	}
	return out, nil
}

func resolveObservation(req JudgeRequest) (quantity.Quantity, error) {
	if req.ObservationFile == "" {
		if req.Observation.Unit.Symbol == "" {
			return quantity.Quantity{}, errors.New("judge requires an observation or observation file")
		}
		return req.Observation, nil
	}
	ds, err := observation.Load(req.ObservationFile)
	if err != nil {
		return quantity.Quantity{}, err
	}
	obs, err := ds.Find(req.Test)
	if err != nil {
		return quantity.Quantity{}, err
	}
	return obs.Mean, nil
}

func resolveModel(req JudgeRequest) (model.Model, error) {
	if req.Model != nil {
		return req.Model, nil
	}
	if strings.TrimSpace(req.ModelCSV) == "" {
		return nil, errors.New("judge requires a model or model csv")
	}
	m, err := replay.Load(req.ModelName, req.ModelCSV)
	if err != nil {
		return nil, err
	}
	return m, nil
}
