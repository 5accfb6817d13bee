package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/lshclust/domain"
)

// dataFilePattern selects data files when a directory is given as input
const dataFilePattern = "**/*.{csv,tsv,txt,dat}"

// DataLoaderImpl implements domain.DataLoader for delimited text files
type DataLoaderImpl struct {
	logger *zap.Logger
}

// NewDataLoader creates a new data loader
func NewDataLoader(logger *zap.Logger) *DataLoaderImpl {
	return &DataLoaderImpl{logger: loggerOrNop(logger)}
}

// ResolvePaths expands files, directories and glob patterns (with ** support)
// into a de-duplicated list of files. Each pattern's matches are sorted.
func (l *DataLoaderImpl) ResolvePaths(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, domain.NewInvalidInputError("no input paths specified", nil)
	}

	seen := make(map[string]bool)
	files := make([]string, 0, len(patterns))
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, pattern := range patterns {
		if hasGlobMeta(pattern) {
			if !doublestar.ValidatePathPattern(pattern) {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid glob pattern: %s", pattern), nil)
			}
			matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid glob pattern: %s", pattern), err)
			}
			if len(matches) == 0 {
				return nil, domain.NewInvalidInputError(fmt.Sprintf("no files found matching %s", pattern), nil)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, domain.NewFileNotFoundError(pattern, err)
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(pattern), dataFilePattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("cannot scan directory %s", pattern), err)
		}
		if len(matches) == 0 {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("no files found in directory %s", pattern), nil)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(filepath.Join(pattern, filepath.FromSlash(m)))
		}
	}

	l.logger.Debug("resolved input paths", zap.Int("patterns", len(patterns)), zap.Strings("files", files))
	return files, nil
}

// Load reads every file in order into one dataset. Sample IDs continue
// across files. All files must agree on the dimension.
func (l *DataLoaderImpl) Load(ctx context.Context, paths []string, opts domain.LoadOptions) (*domain.Dataset, error) {
	delimiter, err := parseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	comment, err := parseComment(opts.Comment)
	if err != nil {
		return nil, err
	}
	if opts.ExpectedDim < 0 {
		return nil, domain.NewConfigurationError("dim must be >= 0, got %d", opts.ExpectedDim)
	}

	ds := &domain.Dataset{
		Dim:     opts.ExpectedDim,
		Points:  make([]domain.DataPoint, 0),
		Sources: make([]string, 0, len(paths)),
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := ds.Len()
		if err := l.loadFile(ctx, path, delimiter, comment, opts, ds); err != nil {
			return nil, err
		}
		ds.Sources = append(ds.Sources, path)
		l.logger.Debug("loaded data file",
			zap.String("file", path),
			zap.Int("rows", ds.Len()-before),
			zap.Int("dim", ds.Dim))
	}

	return ds, nil
}

func (l *DataLoaderImpl) loadFile(ctx context.Context, path string, delimiter, comment rune, opts domain.LoadOptions, ds *domain.Dataset) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewFileNotFoundError(path, err)
		}
		return domain.NewInvalidInputError(fmt.Sprintf("cannot open %s", path), err)
	}
	defer file.Close()

	return readRecords(ctx, file, path, delimiter, comment, opts, ds)
}

// readRecords appends the rows of one delimited stream to ds
func readRecords(ctx context.Context, r io.Reader, name string, delimiter, comment rune, opts domain.LoadOptions, ds *domain.Dataset) error {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.Comment = comment
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = delimiter != ' ' && delimiter != '\t'
	reader.ReuseRecord = true

	first := true
	for n := 0; ; n++ {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return domain.NewFormatError(name, pe.StartLine, pe.Err.Error())
			}
			return domain.NewInvalidInputError(fmt.Sprintf("failed to read %s", name), err)
		}

		row, _ := reader.FieldPos(0)
		if first && opts.HasHeader {
			first = false
			continue
		}
		first = false

		point, err := parseRecord(record, opts.LabelColumn)
		if err != nil {
			return domain.NewFormatError(name, row, err.Error())
		}

		if ds.Dim == 0 {
			ds.Dim = len(point.Vector)
		}
		if len(point.Vector) != ds.Dim {
			return domain.NewFormatError(name, row,
				fmt.Sprintf("expected %d numeric columns, found %d", ds.Dim, len(point.Vector)))
		}

		point.ID = ds.Len()
		ds.Points = append(ds.Points, point)
	}
}

// parseRecord converts one record into a point without an ID
func parseRecord(record []string, labelColumn bool) (domain.DataPoint, error) {
	fields := record
	offset := 1
	var point domain.DataPoint

	if labelColumn {
		point.Label = strings.TrimSpace(record[0])
		fields = record[1:]
		offset = 2
	}
	if len(fields) == 0 {
		return point, errors.New("row has no numeric columns")
	}

	point.Vector = make([]float64, len(fields))
	for i, field := range fields {
		field = strings.TrimSpace(field)
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return point, fmt.Errorf("column %d: non-numeric value %q", i+offset, field)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return point, fmt.Errorf("column %d: value %q is not finite", i+offset, field)
		}
		point.Vector[i] = v
	}
	return point, nil
}

// WriteDataset writes ds as delimited text, label first when labelColumn is set
func WriteDataset(w io.Writer, ds *domain.Dataset, delimiter string, labelColumn bool) error {
	comma, err := parseDelimiter(delimiter)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	writer.Comma = comma

	record := make([]string, 0, ds.Dim+1)
	for _, p := range ds.Points {
		record = record[:0]
		if labelColumn {
			record = append(record, p.Label)
		}
		for _, v := range p.Vector {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return domain.NewOutputError("failed to write dataset", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return domain.NewOutputError("failed to write dataset", err)
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	if s == "" {
		s = domain.DefaultDelimiter
	}
	if s == `\t` || strings.EqualFold(s, "tab") {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, domain.NewConfigurationError("delimiter must be a single character other than quote or newline, got %q", s)
	}
	return r, nil
}

func parseComment(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, domain.NewConfigurationError("comment must be a single character, got %q", s)
	}
	return r, nil
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

var _ domain.DataLoader = (*DataLoaderImpl)(nil)
