package lsh

import (
	"sort"

	"github.com/ludo-technologies/lshclust/domain"
)

// BucketTable maps band keys to the sample IDs hashed into them for one band
type BucketTable struct {
	band    int
	buckets map[string][]int
}

func newBucketTable(band int) *BucketTable {
	return &BucketTable{band: band, buckets: make(map[string][]int)}
}

// Band returns the band index of this table
func (t *BucketTable) Band() int { return t.band }

// Len returns the number of distinct buckets
func (t *BucketTable) Len() int { return len(t.buckets) }

// Keys returns the bucket keys in ascending order
func (t *BucketTable) Keys() []string {
	keys := make([]string, 0, len(t.buckets))
	for k := range t.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bucket returns the IDs in the bucket, ascending. The slice must not be modified.
func (t *BucketTable) Bucket(key string) []int {
	return t.buckets[key]
}

// BucketTables holds one BucketTable per band plus the reverse index
// (band, sample) -> key. Tables are write-once during hashing and read-only after.
type BucketTables struct {
	rows   int
	tables []*BucketTable
	keys   [][]string // keys[band][sampleID]
}

func newBucketTables(bands, rows, numPoints int) *BucketTables {
	bt := &BucketTables{
		rows:   rows,
		tables: make([]*BucketTable, bands),
		keys:   make([][]string, bands),
	}
	for b := 0; b < bands; b++ {
		bt.tables[b] = newBucketTable(b)
		bt.keys[b] = make([]string, numPoints)
	}
	return bt
}

// Bands returns the number of bands
func (bt *BucketTables) Bands() int { return len(bt.tables) }

// Rows returns the number of hash rows per band
func (bt *BucketTables) Rows() int { return bt.rows }

// NumSamples returns the number of hashed samples
func (bt *BucketTables) NumSamples() int {
	if len(bt.keys) == 0 {
		return 0
	}
	return len(bt.keys[0])
}

// Table returns the table of the given band
func (bt *BucketTables) Table(band int) *BucketTable { return bt.tables[band] }

// KeyOf returns the bucket key of a sample in a band
func (bt *BucketTables) KeyOf(band, sampleID int) string { return bt.keys[band][sampleID] }

// Candidates returns the samples that share a bucket with sampleID in at
// least minBands bands, excluding sampleID itself, in ascending order.
func (bt *BucketTables) Candidates(sampleID, minBands int) []int {
	if sampleID < 0 || sampleID >= bt.NumSamples() {
		return []int{}
	}
	if minBands <= 0 {
		minBands = 1
	}

	counts := make(map[int]int)
	for band, table := range bt.tables {
		for _, id := range table.Bucket(bt.keys[band][sampleID]) {
			if id != sampleID {
				counts[id]++
			}
		}
	}

	candidates := make([]int, 0, len(counts))
	for id, c := range counts {
		if c >= minBands {
			candidates = append(candidates, id)
		}
	}
	sort.Ints(candidates)
	return candidates
}

// Stats returns statistics about the bucket tables
func (bt *BucketTables) Stats() domain.BucketStats {
	stats := domain.BucketStats{
		Bands: bt.Bands(),
		Rows:  bt.rows,
	}

	sizes := make([]int, 0)
	total := 0
	for _, table := range bt.tables {
		for _, ids := range table.buckets {
			sizes = append(sizes, len(ids))
			total += len(ids)
			if len(ids) >= 2 {
				stats.CollidingBuckets++
			}
		}
	}
	stats.NumBuckets = len(sizes)
	if len(sizes) == 0 {
		return stats
	}

	sort.Ints(sizes)
	stats.MinBucketSize = sizes[0]
	stats.MaxBucketSize = sizes[len(sizes)-1]
	stats.AvgBucketSize = float64(total) / float64(len(sizes))
	if len(sizes)%2 == 0 {
		mid := len(sizes) / 2
		stats.MedianBucketSize = float64(sizes[mid-1]+sizes[mid]) / 2.0
	} else {
		stats.MedianBucketSize = float64(sizes[len(sizes)/2])
	}
	return stats
}
