package lsh

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ludo-technologies/lshclust/domain"
)

// Evaluate computes summary statistics over final groups. Labels are reduced
// to their class, the text before labelSeparator, before purity is measured.
// Neither groups nor dataset are modified.
func Evaluate(groups []domain.SimilarityGroup, dataset *domain.Dataset, labelSeparator string) domain.QualityReport {
	report := domain.QualityReport{
		NumClusters:  len(groups),
		TotalSamples: dataset.Len(),
		HasLabels:    dataset.HasLabels(),
		Clusters:     make([]domain.ClusterQuality, 0, len(groups)),
	}

	var distanceSum float64
	majoritySum := 0
	for _, g := range groups {
		cq, distances, majority := evaluateGroup(g, dataset, labelSeparator)
		report.Clusters = append(report.Clusters, cq)
		report.CoveredSamples += cq.Size
		distanceSum += floats.Sum(distances)
		majoritySum += majority
	}

	if report.TotalSamples > 0 {
		report.Coverage = float64(report.CoveredSamples) / float64(report.TotalSamples)
	}
	if report.CoveredSamples > 0 {
		report.MeanIntraDistance = distanceSum / float64(report.CoveredSamples)
		if report.HasLabels {
			report.Purity = float64(majoritySum) / float64(report.CoveredSamples)
		}
	}
	return report
}

func evaluateGroup(g domain.SimilarityGroup, dataset *domain.Dataset, sep string) (domain.ClusterQuality, []float64, int) {
	cq := domain.ClusterQuality{
		GroupID: g.ID,
		Size:    len(g.Members),
	}
	if cq.Size == 0 {
		return cq, nil, 0
	}

	cq.Mean = groupMean(g.Members, dataset)
	distances := make([]float64, len(g.Members))
	for i, id := range g.Members {
		distances[i] = floats.Distance(dataset.Vector(id), cq.Mean, 2)
	}
	cq.MeanDistance = stat.Mean(distances, nil)
	cq.MaxDistance = floats.Max(distances)
	if len(distances) > 1 {
		cq.StdDistance = stat.PopStdDev(distances, nil)
	}
	if math.IsNaN(cq.StdDistance) {
		cq.StdDistance = 0
	}

	majority := 0
	if dataset.HasLabels() {
		counts := make(map[string]int)
		for _, id := range g.Members {
			counts[LabelClass(dataset.Points[id].Label, sep)]++
		}
		cq.MajorityLabel, majority = majorityClass(counts)
		cq.Purity = float64(majority) / float64(cq.Size)
	}
	return cq, distances, majority
}

// LabelClass returns the part of label before the first separator, or the
// whole label when the separator is empty or absent.
func LabelClass(label, sep string) string {
	if sep == "" {
		return label
	}
	if idx := strings.Index(label, sep); idx > 0 {
		return label[:idx]
	}
	return label
}

// majorityClass picks the most frequent class; ties go to the lexically smallest
func majorityClass(counts map[string]int) (string, int) {
	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	best, bestCount := "", 0
	for _, c := range classes {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, bestCount
}
