package lsh

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/lshclust/domain"
)

// HasherConfig holds configuration for band hashing
type HasherConfig struct {
	Rows        int               // Hash functions per band
	Bands       int               // Number of bands
	Dim         int               // Vector dimension
	Seed        int64             // Seed for coefficient generation
	Family      domain.HashFamily // Projection family
	BucketWidth float64           // Quantisation width of the pstable family
	Center      bool              // Subtract the dataset mean before projecting
	Workers     int               // Concurrent band writers, 0 means GOMAXPROCS
}

// DefaultHasherConfig returns default hashing configuration for the given dimension
func DefaultHasherConfig(dim int) HasherConfig {
	return HasherConfig{
		Rows:        domain.DefaultRows,
		Bands:       domain.DefaultBands,
		Dim:         dim,
		Seed:        domain.DefaultSeed,
		Family:      domain.HashFamilyHyperplane,
		BucketWidth: domain.DefaultBucketWidth,
		Center:      true,
	}
}

// NumFunctions returns rows*bands
func (c HasherConfig) NumFunctions() int {
	return c.Rows * c.Bands
}

// validateShape checks everything except the dimension
func (c HasherConfig) validateShape() error {
	if c.Rows <= 0 {
		return domain.NewConfigurationError("rows per band must be > 0, got %d", c.Rows)
	}
	if c.Bands <= 0 {
		return domain.NewConfigurationError("number of bands must be > 0, got %d", c.Bands)
	}
	if c.Rows > domain.MaxHashFunctions/c.Bands {
		return domain.NewConfigurationError("rows*bands = %d exceeds the maximum of %d hash functions",
			c.Rows*c.Bands, domain.MaxHashFunctions)
	}
	if _, err := domain.ParseHashFamily(string(c.Family)); err != nil {
		return err
	}
	if c.Family == domain.HashFamilyPStable && c.BucketWidth <= 0 {
		return domain.NewConfigurationError("bucket width must be > 0 for the pstable family, got %g", c.BucketWidth)
	}
	if c.Workers < 0 {
		return domain.NewConfigurationError("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// Validate checks the configuration
func (c HasherConfig) Validate() error {
	if err := c.validateShape(); err != nil {
		return err
	}
	if c.Dim <= 0 {
		return domain.NewConfigurationError("dim must be > 0, got %d", c.Dim)
	}
	return nil
}

// BandHasher assigns every sample to one bucket per band.
// Function i*Rows+j is row j of band i.
type BandHasher struct {
	config    HasherConfig
	functions []HashFunction
	onBand    func(band int)
}

// NewBandHasher creates a hasher whose functions are drawn from config.Seed
func NewBandHasher(config HasherConfig) (*BandHasher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	fns, err := generateHashFunctions(config.Family, config.NumFunctions(), config.Dim, config.Seed, config.BucketWidth)
	if err != nil {
		return nil, err
	}
	return &BandHasher{config: config, functions: fns}, nil
}

// NewBandHasherWithFunctions creates a hasher using caller supplied functions.
// len(functions) must equal rows*bands; Family, Seed and BucketWidth are ignored.
func NewBandHasherWithFunctions(config HasherConfig, functions []HashFunction) (*BandHasher, error) {
	config.Family = domain.HashFamilyHyperplane
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(functions) != config.NumFunctions() {
		return nil, domain.NewConfigurationError("expected %d hash functions (rows*bands), got %d",
			config.NumFunctions(), len(functions))
	}
	fns := make([]HashFunction, len(functions))
	copy(fns, functions)
	return &BandHasher{config: config, functions: fns}, nil
}

// Config returns the hasher configuration
func (h *BandHasher) Config() HasherConfig {
	return h.config
}

// OnBandHashed registers a callback invoked once per completed band.
// The callback may be called concurrently.
func (h *BandHasher) OnBandHashed(fn func(band int)) {
	h.onBand = fn
}

// BandKey computes the bucket key of v in the given band. The key is the
// exact concatenation of the band's component values.
func (h *BandHasher) BandKey(v []float64, band int) string {
	start := band * h.config.Rows
	buf := make([]byte, 0, h.config.Rows*3)
	for j := 0; j < h.config.Rows; j++ {
		if j > 0 {
			buf = append(buf, ':')
		}
		buf = strconv.AppendInt(buf, h.functions[start+j].Hash(v), 10)
	}
	return string(buf)
}

// HashAll hashes every point of the dataset into per-band bucket tables.
// Bands are processed concurrently, each by a single writer.
func (h *BandHasher) HashAll(ctx context.Context, dataset *domain.Dataset) (*BucketTables, error) {
	vectors, err := h.prepareVectors(dataset)
	if err != nil {
		return nil, err
	}

	tables := newBucketTables(h.config.Bands, h.config.Rows, len(vectors))

	workers := h.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for band := 0; band < h.config.Bands; band++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			h.hashBand(tables, band, vectors)
			if h.onBand != nil {
				h.onBand(band)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// hashBand fills the table of one band. IDs are visited in ascending
// order so every bucket is sorted without an extra pass.
func (h *BandHasher) hashBand(tables *BucketTables, band int, vectors [][]float64) {
	table := tables.tables[band]
	keys := tables.keys[band]
	for id, v := range vectors {
		key := h.BandKey(v, band)
		table.buckets[key] = append(table.buckets[key], id)
		keys[id] = key
	}
}

// prepareVectors checks dimensions and applies mean centering
func (h *BandHasher) prepareVectors(dataset *domain.Dataset) ([][]float64, error) {
	n := dataset.Len()
	vectors := make([][]float64, n)
	for i, p := range dataset.Points {
		if p.ID != i {
			return nil, domain.NewAnalysisError("sample IDs must be consecutive from 0", nil)
		}
		if len(p.Vector) != h.config.Dim {
			return nil, domain.NewConfigurationError("sample %d has dimension %d, expected %d",
				p.ID, len(p.Vector), h.config.Dim)
		}
		vectors[i] = p.Vector
	}

	if !h.config.Center || n == 0 {
		return vectors, nil
	}

	mean := make([]float64, h.config.Dim)
	w := 1 / float64(n)
	for _, v := range vectors {
		floats.AddScaled(mean, w, v)
	}

	centered := make([][]float64, n)
	for i, v := range vectors {
		centered[i] = make([]float64, h.config.Dim)
		floats.SubTo(centered[i], v, mean)
	}
	return centered, nil
}
