package lsh

import (
	"context"
	"time"

	"github.com/ludo-technologies/lshclust/domain"
)

// PipelineConfig holds every stage's configuration
type PipelineConfig struct {
	Hasher           HasherConfig
	ExpectedClusters int
	Merge            MergeOptions
	LabelSeparator   string
}

// PipelineConfigFromRequest derives the pipeline configuration from a request.
// dim is the dataset dimension, used when the request leaves Dim at 0.
func PipelineConfigFromRequest(req *domain.ClusterRequest, dim int) PipelineConfig {
	if req.Dim > 0 {
		dim = req.Dim
	}
	return PipelineConfig{
		Hasher: HasherConfig{
			Rows:        req.Rows,
			Bands:       req.Bands,
			Dim:         dim,
			Seed:        req.Seed,
			Family:      req.Family,
			BucketWidth: req.BucketWidth,
			Center:      req.Center,
			Workers:     req.Workers,
		},
		ExpectedClusters: req.ExpectedClusters,
		Merge: MergeOptions{
			Policy:          req.MeanPolicy,
			AssignUntouched: req.AssignUntouched,
			Workers:         req.Workers,
		},
		LabelSeparator: req.LabelSeparator,
	}
}

// StageTimings records wall time per stage
type StageTimings struct {
	Hash     time.Duration
	Group    time.Duration
	Coalesce time.Duration
	Merge    time.Duration
	Evaluate time.Duration
}

// Result carries the value produced by every stage
type Result struct {
	Tables    *BucketTables
	Raw       []domain.SimilarityGroup
	Coalesced []domain.SimilarityGroup
	Merge     *MergeResult
	Quality   domain.QualityReport
	Timings   StageTimings
}

// Clusters returns the final groups
func (r *Result) Clusters() []domain.SimilarityGroup {
	if r.Merge == nil {
		return nil
	}
	return r.Merge.Groups
}

// Pipeline chains hashing, candidate grouping, coalescence, merging and
// evaluation. Each stage receives the previous stage's value; a Pipeline
// holds no state between runs.
type Pipeline struct {
	config    PipelineConfig
	functions []HashFunction
	onBand    func(band int)
}

// NewPipeline creates a pipeline
func NewPipeline(config PipelineConfig) *Pipeline {
	return &Pipeline{config: config}
}

// WithHashFunctions replaces the seeded hash family with fixed functions
func (p *Pipeline) WithHashFunctions(functions []HashFunction) *Pipeline {
	p.functions = functions
	return p
}

// OnBandHashed registers a per-band progress callback
func (p *Pipeline) OnBandHashed(fn func(band int)) *Pipeline {
	p.onBand = fn
	return p
}

// Validate checks the configuration without touching data
func (p *Pipeline) Validate() error {
	if err := p.config.Hasher.validateShape(); err != nil {
		return err
	}
	if p.config.ExpectedClusters <= 0 {
		return domain.NewConfigurationError("expected number of clusters must be > 0, got %d", p.config.ExpectedClusters)
	}
	if _, err := domain.ParseMeanPolicy(string(p.config.Merge.Policy)); err != nil {
		return err
	}
	return nil
}

// Hash runs only the hashing stage
func (p *Pipeline) Hash(ctx context.Context, dataset *domain.Dataset) (*BucketTables, error) {
	if err := p.config.Hasher.validateShape(); err != nil {
		return nil, err
	}
	cfg := p.config.Hasher
	if dataset.Len() == 0 && cfg.Dim <= 0 {
		return newBucketTables(cfg.Bands, cfg.Rows, 0), nil
	}

	var (
		hasher *BandHasher
		err    error
	)
	if p.functions != nil {
		hasher, err = NewBandHasherWithFunctions(cfg, p.functions)
	} else {
		hasher, err = NewBandHasher(cfg)
	}
	if err != nil {
		return nil, err
	}
	if p.onBand != nil {
		hasher.OnBandHashed(p.onBand)
	}
	return hasher.HashAll(ctx, dataset)
}

// Run executes every stage in order
func (p *Pipeline) Run(ctx context.Context, dataset *domain.Dataset) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	tables, err := p.Hash(ctx, dataset)
	if err != nil {
		return nil, err
	}
	result.Tables = tables
	result.Timings.Hash = time.Since(start)

	start = time.Now()
	result.Raw = NeighborhoodGroups(tables)
	result.Timings.Group = time.Since(start)

	start = time.Now()
	result.Coalesced = Coalesce(result.Raw)
	result.Timings.Coalesce = time.Since(start)

	start = time.Now()
	merged, err := MergeToTarget(ctx, result.Coalesced, dataset, p.config.ExpectedClusters, p.config.Merge)
	if err != nil {
		return nil, err
	}
	result.Merge = merged
	result.Timings.Merge = time.Since(start)

	start = time.Now()
	result.Quality = Evaluate(merged.Groups, dataset, p.config.LabelSeparator)
	result.Timings.Evaluate = time.Since(start)

	return result, nil
}
