package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/geoentities/internal/logging"
)

// Stage is one step of an import: a resource loaded into one entity table.
type Stage struct {
	Entity Entity
	Label  string // display name, e.g. "SubRegions"
	Layout Layout

	load func(ctx context.Context, rr *RowReader, w Writer, policy ConflictPolicy) (rows int, written int64, err error)
}

// Resource returns the CSV resource the stage reads.
func (s Stage) Resource() Resource { return s.Layout.Resource }

// Stages lists the import stages in dependency order. Parents always load
// before the tables that reference them.
var Stages = []Stage{
	{Entity: EntityRegion, Label: "Regions", Layout: RegionLayout, load: loader(MapRegion, Writer.InsertRegions)},
	{Entity: EntitySubRegion, Label: "SubRegions", Layout: SubRegionLayout, load: loader(MapSubRegion, Writer.InsertSubRegions)},
	{Entity: EntityCountry, Label: "Countries", Layout: CountryLayout, load: loader(MapCountry, Writer.InsertCountries)},
	{Entity: EntityState, Label: "States", Layout: StateLayout, load: loader(MapState, Writer.InsertStates)},
	{Entity: EntityCity, Label: "Cities", Layout: CityLayout, load: loader(MapCity, Writer.InsertCities)},
}

// loader binds a row mapper to the Writer method that persists its output.
func loader[T any](
	mapRow func(Row) (T, error),
	insert func(Writer, context.Context, []T, ConflictPolicy) (int64, error),
) func(context.Context, *RowReader, Writer, ConflictPolicy) (int, int64, error) {
	return func(ctx context.Context, rr *RowReader, w Writer, policy ConflictPolicy) (int, int64, error) {
		var records []T
		for {
			if err := ctx.Err(); err != nil {
				return len(records), 0, err
			}
			row, err := rr.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return len(records), 0, err
			}
			rec, err := mapRow(row)
			if err != nil {
				return len(records), 0, err
			}
			records = append(records, rec)
		}
		if len(records) == 0 {
			return 0, 0, nil
		}
		written, err := insert(w, ctx, records, policy)
		return len(records), written, err
	}
}

// StageResult summarises one completed stage.
type StageResult struct {
	Stage    Stage         `json:"-"`
	Entity   Entity        `json:"entity"`
	Rows     int           `json:"rows"`    // data rows read from the resource
	Written  int64         `json:"written"` // rows inserted (or overwritten under ConflictUpdate)
	Skipped  int64         `json:"skipped"` // rows left untouched because the id existed
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// ImportResult summarises a successful import run.
type ImportResult struct {
	RunID    string         `json:"run_id"`
	Policy   ConflictPolicy `json:"policy"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	Stages   []StageResult  `json:"stages"`
}

// Totals returns the rows read and written across all stages.
func (r *ImportResult) Totals() (rows int, written int64) {
	for _, s := range r.Stages {
		rows += s.Rows
		written += s.Written
	}
	return rows, written
}

// Importer loads the full dataset from a Fetcher into a Store.
type Importer struct {
	fetcher  Fetcher
	store    Store
	observer Observer
	policy   ConflictPolicy
	newRunID func() string
	now      func() time.Time

	running chan struct{} // one slot, held for the length of a run
}

// Option configures an Importer.
type Option func(*Importer)

// WithObserver sets the progress observer. Use MultiObserver to attach several.
func WithObserver(o Observer) Option {
	return func(im *Importer) {
		if o != nil {
			im.observer = o
		}
	}
}

// WithConflictPolicy sets how existing primary keys are handled.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(im *Importer) {
		if p != "" {
			im.policy = p
		}
	}
}

// NewImporter creates an Importer. The default conflict policy is ConflictSkip.
func NewImporter(f Fetcher, s Store, opts ...Option) *Importer {
	im := &Importer{
		fetcher:  f,
		store:    s,
		observer: NopObserver{},
		policy:   ConflictSkip,
		newRunID: uuid.NewString,
		now:      time.Now,
		running:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run executes every stage inside one transaction. On any error nothing is
// persisted and the error is returned unchanged in kind (use errors.As to
// inspect FetchError, ParseError, SchemaError, ReferentialError or
// DuplicateError). Runs of one Importer never overlap: a second call while
// one is active fails with ErrImportRunning.
func (im *Importer) Run(ctx context.Context) (*ImportResult, error) {
	select {
	case im.running <- struct{}{}:
		defer func() { <-im.running }()
	default:
		return nil, ErrImportRunning
	}

	result := &ImportResult{
		RunID:   im.newRunID(),
		Policy:  im.policy,
		Started: im.now(),
	}
	ctx = logging.WithRunID(ctx, result.RunID)
	im.observer.RunStarted(ctx, result.RunID)

	err := im.store.InTx(ctx, func(ctx context.Context, w Writer) error {
		result.Stages = result.Stages[:0]
		for _, stage := range Stages {
			sr, err := im.runStage(ctx, result.RunID, stage, w)
			if err != nil {
				return fmt.Errorf("import %s: %w", stage.Label, err)
			}
			result.Stages = append(result.Stages, sr)
		}
		return nil
	})
	result.Duration = im.now().Sub(result.Started)

	im.observer.RunFinished(ctx, result, err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (im *Importer) runStage(ctx context.Context, runID string, stage Stage, w Writer) (StageResult, error) {
	start := im.now()
	sr := StageResult{Stage: stage, Entity: stage.Entity}

	im.observer.StageStarted(ctx, runID, stage)

	body, err := im.fetcher.Fetch(ctx, stage.Resource())
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Resource: stage.Resource(), Err: err}
		}
		return sr, err
	}
	defer body.Close()

	decoded, counter := WrapForStreaming(body)
	rr, err := NewRowReader(stage.Resource(), decoded)
	if err != nil {
		return sr, err
	}
	if err := stage.Layout.Check(rr.Header()); err != nil {
		return sr, err
	}

	im.observer.StageSaving(ctx, runID, stage)

	sr.Rows, sr.Written, err = stage.load(ctx, rr, w, im.policy)
	if err != nil {
		return sr, err
	}
	if im.policy == ConflictSkip {
		sr.Skipped = int64(sr.Rows) - sr.Written
	}
	sr.Bytes = counter.BytesRead
	sr.Duration = im.now().Sub(start)

	im.observer.StageSaved(ctx, runID, sr)
	return sr, nil
}
