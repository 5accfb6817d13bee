package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/domain"
)

// ClusterUseCase orchestrates loading data, clustering it and writing the report
type ClusterUseCase struct {
	service      domain.ClusterService
	loader       domain.DataLoader
	formatter    domain.ClusterOutputFormatter
	configLoader domain.ClusterConfigurationLoader
	output       domain.ReportWriter
	logger       *zap.Logger
}

// NewClusterUseCase creates a new cluster use case
func NewClusterUseCase(
	service domain.ClusterService,
	loader domain.DataLoader,
	formatter domain.ClusterOutputFormatter,
	configLoader domain.ClusterConfigurationLoader,
	output domain.ReportWriter,
	logger *zap.Logger,
) *ClusterUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClusterUseCase{
		service:      service,
		loader:       loader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
		logger:       logger,
	}
}

// Execute clusters the input files and writes the report
func (uc *ClusterUseCase) Execute(ctx context.Context, req domain.ClusterRequest) error {
	_, err := uc.Run(ctx, req)
	return err
}

// Run is Execute returning the response that was written
func (uc *ClusterUseCase) Run(ctx context.Context, req domain.ClusterRequest) (*domain.ClusterResponse, error) {
	finalReq, dataset, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Cluster(ctx, dataset, finalReq)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}

	uc.logger.Info("clustering complete",
		zap.Int("samples", dataset.Len()),
		zap.Int("clusters", len(response.Clusters)),
		zap.Int64("duration_ms", response.Duration))

	err = uc.write(finalReq, func(w io.Writer) error {
		return uc.formatter.FormatClusterResponse(response, finalReq.OutputFormat, w)
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// Neighbors lists the LSH candidates of one sample and writes them
func (uc *ClusterUseCase) Neighbors(ctx context.Context, req domain.ClusterRequest, sampleID, minBands int) (*domain.NeighborsResponse, error) {
	finalReq, dataset, err := uc.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Neighbors(ctx, dataset, finalReq, sampleID, minBands)
	if err != nil {
		return nil, fmt.Errorf("neighbour query failed: %w", err)
	}

	err = uc.write(finalReq, func(w io.Writer) error {
		return uc.formatter.FormatNeighbors(response, finalReq.OutputFormat, w)
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// prepare merges configuration, validates the result and loads the dataset.
// Every configuration error surfaces before any file is read.
func (uc *ClusterUseCase) prepare(ctx context.Context, req domain.ClusterRequest) (*domain.ClusterRequest, *domain.Dataset, error) {
	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, nil, err
	}

	if err := finalReq.Validate(); err != nil {
		return nil, nil, err
	}
	if !finalReq.HasValidOutputWriter() {
		return nil, nil, domain.NewInvalidInputError("output writer is required", nil)
	}

	files, err := uc.loader.ResolvePaths(finalReq.Paths)
	if err != nil {
		return nil, nil, err
	}
	uc.logger.Debug("input files resolved", zap.Int("files", len(files)))

	dataset, err := uc.loader.Load(ctx, files, domain.LoadOptionsFromRequest(finalReq))
	if err != nil {
		return nil, nil, err
	}
	uc.logger.Debug("dataset loaded", zap.Int("samples", dataset.Len()), zap.Int("dim", dataset.Dim))

	return finalReq, dataset, nil
}

func (uc *ClusterUseCase) loadAndMergeConfig(req domain.ClusterRequest) (*domain.ClusterRequest, error) {
	if uc.configLoader == nil {
		return &req, nil
	}

	target := ""
	if len(req.Paths) > 0 {
		target = req.Paths[0]
	}
	base, err := uc.configLoader.LoadClusterConfig(req.ConfigPath, target)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return uc.configLoader.MergeConfig(base, &req), nil
}

func (uc *ClusterUseCase) write(req *domain.ClusterRequest, writeFunc func(io.Writer) error) error {
	if uc.output != nil {
		return uc.output.Write(req.OutputWriter, req.OutputPath, req.OutputFormat, writeFunc)
	}
	if req.OutputWriter == nil {
		return domain.NewOutputError("no output destination", nil)
	}
	if err := writeFunc(req.OutputWriter); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// ClusterUseCaseBuilder provides a builder pattern for creating ClusterUseCase
type ClusterUseCaseBuilder struct {
	service      domain.ClusterService
	loader       domain.DataLoader
	formatter    domain.ClusterOutputFormatter
	configLoader domain.ClusterConfigurationLoader
	output       domain.ReportWriter
	logger       *zap.Logger
}

// NewClusterUseCaseBuilder creates a new builder
func NewClusterUseCaseBuilder() *ClusterUseCaseBuilder {
	return &ClusterUseCaseBuilder{}
}

// WithService sets the cluster service
func (b *ClusterUseCaseBuilder) WithService(service domain.ClusterService) *ClusterUseCaseBuilder {
	b.service = service
	return b
}

// WithDataLoader sets the data loader
func (b *ClusterUseCaseBuilder) WithDataLoader(loader domain.DataLoader) *ClusterUseCaseBuilder {
	b.loader = loader
	return b
}

// WithFormatter sets the output formatter
func (b *ClusterUseCaseBuilder) WithFormatter(formatter domain.ClusterOutputFormatter) *ClusterUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *ClusterUseCaseBuilder) WithConfigLoader(configLoader domain.ClusterConfigurationLoader) *ClusterUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *ClusterUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *ClusterUseCaseBuilder {
	b.output = output
	return b
}

// WithLogger sets the logger
func (b *ClusterUseCaseBuilder) WithLogger(logger *zap.Logger) *ClusterUseCaseBuilder {
	b.logger = logger
	return b
}

// Build creates the ClusterUseCase. The configuration loader, report
// writer and logger are optional.
func (b *ClusterUseCaseBuilder) Build() (*ClusterUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("cluster service is required")
	}
	if b.loader == nil {
		return nil, fmt.Errorf("data loader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	return NewClusterUseCase(
		b.service,
		b.loader,
		b.formatter,
		b.configLoader,
		b.output,
		b.logger,
	), nil
}
