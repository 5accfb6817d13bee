package domain

// Hashing defaults. Rows and bands follow the usual "AND within a band, OR
// across bands" amplification: a pair whose per-function collision
// probability is p becomes a candidate with probability 1-(1-p^r)^b.
const (
	// DefaultRows is the number of hash functions combined into one band key.
	DefaultRows = 10

	// DefaultBands is the number of independent bands (bucket tables).
	DefaultBands = 25

	// DefaultSeed seeds the hash coefficient generator.
	DefaultSeed int64 = 0x5eed_1234

	// DefaultBucketWidth is the quantisation width w of the p-stable family.
	DefaultBucketWidth = 4.0

	// MaxHashFunctions caps rows*bands. Beyond this the coefficient table
	// (rows*bands*dim floats) stops being a reasonable in-memory structure.
	MaxHashFunctions = 1 << 16
)

// Merge defaults
const (
	// DefaultExpectedClusters is the target cluster count K.
	DefaultExpectedClusters = 2
)

// Input defaults
const (
	DefaultDelimiter      = ","
	DefaultCommentChar    = "#"
	DefaultLabelSeparator = "_"
)

// HashFamily names a randomized projection family
type HashFamily string

const (
	// HashFamilyHyperplane is sign-of-random-projection (cosine) hashing.
	HashFamilyHyperplane HashFamily = "hyperplane"
	// HashFamilyPStable is Gaussian p-stable hashing for L2 distance.
	HashFamilyPStable HashFamily = "pstable"
)

// MeanPolicy controls when ClusterMeans are recomputed during pooling
type MeanPolicy string

const (
	// MeanPolicySnapshot computes retained-group means once before pooling.
	// Assignments are independent of pool order.
	MeanPolicySnapshot MeanPolicy = "snapshot"
	// MeanPolicyIncremental updates a group's mean after every reassignment.
	MeanPolicyIncremental MeanPolicy = "incremental"
)

// ParseHashFamily validates a hash family name
func ParseHashFamily(s string) (HashFamily, error) {
	switch HashFamily(s) {
	case HashFamilyHyperplane, HashFamilyPStable:
		return HashFamily(s), nil
	case "":
		return HashFamilyHyperplane, nil
	default:
		return "", NewConfigurationError("unknown hash family '%s', must be one of: hyperplane, pstable", s)
	}
}

// ParseMeanPolicy validates a mean policy name
func ParseMeanPolicy(s string) (MeanPolicy, error) {
	switch MeanPolicy(s) {
	case MeanPolicySnapshot, MeanPolicyIncremental:
		return MeanPolicy(s), nil
	case "":
		return MeanPolicySnapshot, nil
	default:
		return "", NewConfigurationError("unknown mean policy '%s', must be one of: snapshot, incremental", s)
	}
}
