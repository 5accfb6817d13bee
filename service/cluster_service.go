package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/lsh"
)

// ClusterServiceImpl implements domain.ClusterService on top of the lsh pipeline
type ClusterServiceImpl struct {
	logger   *zap.Logger
	progress domain.ProgressManager
}

// NewClusterService creates a new cluster service.
// logger and progress may be nil.
func NewClusterService(logger *zap.Logger, progress domain.ProgressManager) *ClusterServiceImpl {
	return &ClusterServiceImpl{
		logger:   loggerOrNop(logger),
		progress: progress,
	}
}

// Cluster runs the full pipeline on an already loaded dataset
func (s *ClusterServiceImpl) Cluster(ctx context.Context, dataset *domain.Dataset, req *domain.ClusterRequest) (*domain.ClusterResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return nil, fmt.Errorf("cluster request cannot be nil")
	}
	if dataset == nil {
		return nil, domain.NewInvalidInputError("dataset cannot be nil", nil)
	}

	startTime := time.Now()

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	pipeline := lsh.NewPipeline(lsh.PipelineConfigFromRequest(req, dataset.Dim))
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	s.trackBands(pipeline, req.Bands)

	s.logger.Debug("clustering started",
		zap.Int("samples", dataset.Len()),
		zap.Int("dim", dataset.Dim),
		zap.Int("rows", req.Rows),
		zap.Int("bands", req.Bands),
		zap.String("family", string(req.Family)),
		zap.Int64("seed", req.Seed),
		zap.Int("expected_clusters", req.ExpectedClusters))

	result, err := pipeline.Run(ctx, dataset)
	if s.progress != nil {
		s.progress.Complete(err == nil)
	}
	if err != nil {
		s.logger.Debug("clustering failed", zap.Error(err))
		return nil, err
	}

	stats := result.Tables.Stats()
	s.logger.Debug("hashing complete",
		zap.Duration("elapsed", result.Timings.Hash),
		zap.Int("buckets", stats.NumBuckets),
		zap.Int("colliding_buckets", stats.CollidingBuckets),
		zap.Float64("median_bucket_size", stats.MedianBucketSize))
	s.logger.Debug("candidate groups built",
		zap.Int("raw_groups", len(result.Raw)),
		zap.Duration("elapsed", result.Timings.Group))
	s.logger.Debug("groups coalesced",
		zap.Int("coalesced_groups", len(result.Coalesced)),
		zap.Duration("elapsed", result.Timings.Coalesce))
	s.logger.Debug("merged to target",
		zap.Int("clusters", len(result.Merge.Groups)),
		zap.Int("pooled", len(result.Merge.Pooled)),
		zap.Int("untouched", result.Merge.Untouched),
		zap.Duration("elapsed", result.Timings.Merge))

	quality := result.Quality
	response := &domain.ClusterResponse{
		Clusters: buildClusters(result.Clusters(), dataset),
		Statistics: &domain.ClusterStatistics{
			Samples:          dataset.Len(),
			Dim:              dataset.Dim,
			RawGroups:        len(result.Raw),
			CoalescedGroups:  len(result.Coalesced),
			FinalClusters:    len(result.Merge.Groups),
			PooledSamples:    len(result.Merge.Pooled),
			UntouchedSamples: result.Merge.Untouched,
			Buckets:          stats,
		},
		Quality:  &quality,
		Request:  req,
		Duration: time.Since(startTime).Milliseconds(),
		Success:  true,
	}

	return response, nil
}

// Neighbors hashes the dataset and lists the samples that share at least
// minBands band buckets with sampleID, nearest first.
func (s *ClusterServiceImpl) Neighbors(ctx context.Context, dataset *domain.Dataset, req *domain.ClusterRequest, sampleID, minBands int) (*domain.NeighborsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("cluster request cannot be nil")
	}
	if dataset == nil {
		return nil, domain.NewInvalidInputError("dataset cannot be nil", nil)
	}
	if sampleID < 0 || sampleID >= dataset.Len() {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("sample %d out of range [0, %d)", sampleID, dataset.Len()), nil)
	}
	if minBands <= 0 {
		minBands = 1
	}
	if minBands > req.Bands {
		return nil, domain.NewConfigurationError("min-bands %d exceeds the number of bands %d", minBands, req.Bands)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	pipeline := lsh.NewPipeline(lsh.PipelineConfigFromRequest(req, dataset.Dim))
	s.trackBands(pipeline, req.Bands)

	tables, err := pipeline.Hash(ctx, dataset)
	if s.progress != nil {
		s.progress.Complete(err == nil)
	}
	if err != nil {
		return nil, err
	}

	candidates := tables.Candidates(sampleID, minBands)
	lsh.SortByDistance(candidates, dataset.Vector(sampleID), dataset)

	s.logger.Debug("neighbour query",
		zap.Int("sample", sampleID),
		zap.Int("min_bands", minBands),
		zap.Int("candidates", len(candidates)))

	neighbors := make([]domain.ClusterMember, len(candidates))
	for i, id := range candidates {
		neighbors[i] = domain.ClusterMember{SampleID: id, Label: dataset.Points[id].Label}
	}

	return &domain.NeighborsResponse{
		SampleID:  sampleID,
		Label:     dataset.Points[sampleID].Label,
		MinBands:  minBands,
		Neighbors: neighbors,
	}, nil
}

func (s *ClusterServiceImpl) trackBands(pipeline *lsh.Pipeline, bands int) {
	if s.progress == nil {
		return
	}
	s.progress.Initialize(bands)
	s.progress.Start()
	pipeline.OnBandHashed(func(int) {
		s.progress.Increment()
	})
}

// buildClusters converts final groups into response clusters
func buildClusters(groups []domain.SimilarityGroup, dataset *domain.Dataset) []*domain.Cluster {
	clusters := make([]*domain.Cluster, 0, len(groups))
	for _, g := range groups {
		members := make([]domain.ClusterMember, len(g.Members))
		for i, id := range g.Members {
			members[i] = domain.ClusterMember{SampleID: id, Label: dataset.Points[id].Label}
		}
		clusters = append(clusters, &domain.Cluster{
			ID:      g.ID,
			Size:    len(members),
			Members: members,
		})
	}
	return clusters
}

var _ domain.ClusterService = (*ClusterServiceImpl)(nil)
