package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ludo-technologies/lshclust/domain"
)

// ClusterFormatter implements the domain.ClusterOutputFormatter interface
type ClusterFormatter struct {
	utils *FormatUtils
}

// NewClusterFormatter creates a new cluster output formatter
func NewClusterFormatter() *ClusterFormatter {
	return &ClusterFormatter{utils: NewFormatUtils()}
}

// FormatClusterResponse formats a cluster response according to the specified format
func (f *ClusterFormatter) FormatClusterResponse(response *domain.ClusterResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("cluster response cannot be nil", nil)
	}
	switch format {
	case domain.OutputFormatText:
		return f.formatAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.formatAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatNeighbors formats a neighbour query result
func (f *ClusterFormatter) FormatNeighbors(response *domain.NeighborsResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("neighbors response cannot be nil", nil)
	}
	switch format {
	case domain.OutputFormatText:
		return f.formatNeighborsAsText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return f.formatNeighborsAsCSV(response, writer)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// formatAsText writes one block per cluster. Statistics and quality
// sections are added when details are requested.
func (f *ClusterFormatter) formatAsText(response *domain.ClusterResponse, writer io.Writer) error {
	if !response.Success {
		fmt.Fprintf(writer, "Clustering failed: %s\n", response.Error)
		return nil
	}

	showDetails := response.Request != nil && response.Request.ShowDetails

	fmt.Fprint(writer, f.utils.FormatMainHeader("LSH Clustering Results"))

	if stats := response.Statistics; stats != nil {
		fmt.Fprint(writer, f.utils.FormatSectionHeader("Summary"))
		fmt.Fprint(writer, f.utils.FormatLabel("Samples", stats.Samples))
		fmt.Fprint(writer, f.utils.FormatLabel("Dimension", stats.Dim))
		fmt.Fprint(writer, f.utils.FormatLabel("Clusters", stats.FinalClusters))
		if response.Quality != nil {
			fmt.Fprint(writer, f.utils.FormatLabel("Coverage", f.utils.FormatPercent(response.Quality.Coverage)))
			if response.Quality.HasLabels {
				fmt.Fprint(writer, f.utils.FormatLabel("Purity", f.utils.FormatPercent(response.Quality.Purity)))
			}
		}
		fmt.Fprint(writer, f.utils.FormatLabel("Duration", fmt.Sprintf("%dms", response.Duration)))
		fmt.Fprintln(writer)

		if showDetails {
			fmt.Fprint(writer, f.utils.FormatSectionHeader("Pipeline"))
			fmt.Fprint(writer, f.utils.FormatLabel("Bands x rows", fmt.Sprintf("%d x %d", stats.Buckets.Bands, stats.Buckets.Rows)))
			fmt.Fprint(writer, f.utils.FormatLabel("Buckets", stats.Buckets.NumBuckets))
			fmt.Fprint(writer, f.utils.FormatLabel("Colliding buckets", stats.Buckets.CollidingBuckets))
			fmt.Fprint(writer, f.utils.FormatLabel("Median bucket size", f.utils.FormatFloat(stats.Buckets.MedianBucketSize)))
			fmt.Fprint(writer, f.utils.FormatLabel("Raw groups", stats.RawGroups))
			fmt.Fprint(writer, f.utils.FormatLabel("Coalesced groups", stats.CoalescedGroups))
			fmt.Fprint(writer, f.utils.FormatLabel("Pooled samples", stats.PooledSamples))
			fmt.Fprint(writer, f.utils.FormatLabel("Untouched samples", stats.UntouchedSamples))
			fmt.Fprintln(writer)
		}
	}

	if len(response.Clusters) == 0 {
		fmt.Fprintln(writer, "No clusters found.")
		return nil
	}

	fmt.Fprint(writer, f.utils.FormatSectionHeader("Clusters"))
	quality := clusterQualityByID(response.Quality)
	for _, cluster := range response.Clusters {
		if cluster == nil {
			continue
		}
		fmt.Fprintf(writer, "Cluster %d (%d samples)\n", cluster.ID, cluster.Size)
		if q, ok := quality[cluster.ID]; ok && showDetails {
			fmt.Fprint(writer, f.utils.FormatLabelWithIndent(SectionPadding, "mean", f.utils.FormatVector(q.Mean, 6)))
			fmt.Fprint(writer, f.utils.FormatLabelWithIndent(SectionPadding, "mean distance", f.utils.FormatFloat(q.MeanDistance)))
			fmt.Fprint(writer, f.utils.FormatLabelWithIndent(SectionPadding, "max distance", f.utils.FormatFloat(q.MaxDistance)))
			if q.MajorityLabel != "" {
				fmt.Fprint(writer, f.utils.FormatLabelWithIndent(SectionPadding, "majority",
					fmt.Sprintf("%s (%s)", q.MajorityLabel, f.utils.FormatPercent(q.Purity))))
			}
		}
		for _, m := range cluster.Members {
			if m.Label != "" {
				fmt.Fprintf(writer, "%*s%d\t%s\n", ItemPadding, "", m.SampleID, m.Label)
			} else {
				fmt.Fprintf(writer, "%*s%d\n", ItemPadding, "", m.SampleID)
			}
		}
		fmt.Fprintln(writer)
	}

	return nil
}

// formatAsCSV writes one sample_id,label,cluster_id row per assigned sample
func (f *ClusterFormatter) formatAsCSV(response *domain.ClusterResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"sample_id", "label", "cluster_id"}); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}
	for _, cluster := range response.Clusters {
		if cluster == nil {
			continue
		}
		for _, m := range cluster.Members {
			record := []string{strconv.Itoa(m.SampleID), m.Label, strconv.Itoa(cluster.ID)}
			if err := w.Write(record); err != nil {
				return domain.NewOutputError("failed to write CSV record", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func (f *ClusterFormatter) formatNeighborsAsText(response *domain.NeighborsResponse, writer io.Writer) error {
	fmt.Fprint(writer, f.utils.FormatMainHeader("LSH Neighbours"))
	sample := strconv.Itoa(response.SampleID)
	if response.Label != "" {
		sample += " (" + response.Label + ")"
	}
	fmt.Fprint(writer, f.utils.FormatLabel("Sample", sample))
	fmt.Fprint(writer, f.utils.FormatLabel("Min shared bands", response.MinBands))
	fmt.Fprint(writer, f.utils.FormatLabel("Candidates", len(response.Neighbors)))
	fmt.Fprintln(writer)

	if len(response.Neighbors) == 0 {
		fmt.Fprintln(writer, "No neighbours share a bucket with this sample.")
		return nil
	}
	for _, n := range response.Neighbors {
		if n.Label != "" {
			fmt.Fprintf(writer, "%*s%d\t%s\n", ItemPadding, "", n.SampleID, n.Label)
		} else {
			fmt.Fprintf(writer, "%*s%d\n", ItemPadding, "", n.SampleID)
		}
	}
	return nil
}

func (f *ClusterFormatter) formatNeighborsAsCSV(response *domain.NeighborsResponse, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write([]string{"sample_id", "neighbor_id", "label", "rank"}); err != nil {
		return domain.NewOutputError("failed to write CSV header", err)
	}
	for i, n := range response.Neighbors {
		record := []string{strconv.Itoa(response.SampleID), strconv.Itoa(n.SampleID), n.Label, strconv.Itoa(i + 1)}
		if err := w.Write(record); err != nil {
			return domain.NewOutputError("failed to write CSV record", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return domain.NewOutputError("failed to write CSV", err)
	}
	return nil
}

func clusterQualityByID(report *domain.QualityReport) map[int]domain.ClusterQuality {
	byID := make(map[int]domain.ClusterQuality)
	if report == nil {
		return byID
	}
	for _, q := range report.Clusters {
		byID[q.GroupID] = q
	}
	return byID
}

var _ domain.ClusterOutputFormatter = (*ClusterFormatter)(nil)
