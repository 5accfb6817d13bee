package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/lshclust/domain"
)

func TestFileOutputWriter_Writer(t *testing.T) {
	var out, status bytes.Buffer
	w := NewFileOutputWriter(&status)

	err := w.Write(&out, "", domain.OutputFormatText, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "report")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "report", out.String())
	assert.Empty(t, status.String())
}

func TestFileOutputWriter_File(t *testing.T) {
	var status bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "clusters.csv")

	err := NewFileOutputWriter(&status).Write(nil, path, domain.OutputFormatCSV, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "sample_id,label,cluster_id\n")
		return err
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "sample_id,label,cluster_id\n", string(content))
	assert.Contains(t, status.String(), "CSV report generated")
}

func TestFileOutputWriter_AddsFormatExtension(t *testing.T) {
	dir := t.TempDir()
	var status bytes.Buffer

	err := NewFileOutputWriter(&status).Write(nil, filepath.Join(dir, "clusters"), domain.OutputFormatJSON, func(w io.Writer) error {
		_, err := fmt.Fprint(w, "{}")
		return err
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "clusters.json"))
	assert.NoFileExists(t, filepath.Join(dir, "clusters"))
	assert.Contains(t, status.String(), "clusters.json")
}

func TestFileOutputWriter_FailedWriteRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clusters.txt")

	err := NewFileOutputWriter(io.Discard).Write(nil, path, domain.OutputFormatText, func(w io.Writer) error {
		_, _ = fmt.Fprint(w, "partial")
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.True(t, domain.HasErrorCode(err, domain.ErrCodeOutputError))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileOutputWriter_NoDestination(t *testing.T) {
	err := NewFileOutputWriter(io.Discard).Write(nil, "", domain.OutputFormatText, func(io.Writer) error { return nil })
	assert.Error(t, err)
}

func TestOutputFormatResolver_Determine(t *testing.T) {
	r := NewOutputFormatResolver()

	format, ext, err := r.Determine(false, false, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OutputFormatText, format)
	assert.Equal(t, "txt", ext)

	format, ext, err = r.Determine(false, true, false)
	require.NoError(t, err)
	assert.Equal(t, domain.OutputFormatYAML, format)
	assert.Equal(t, "yaml", ext)

	_, _, err = r.Determine(true, false, true)
	assert.Error(t, err)

	assert.Equal(t, "csv", r.ExtensionFor(domain.OutputFormatCSV))
	assert.Equal(t, "txt", r.ExtensionFor(domain.OutputFormatText))
}

func TestProgressManager_NonInteractive(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager("Hashing bands")
	pm.SetWriter(&buf)

	pm.Initialize(3)
	pm.Start()
	for i := 0; i < 3; i++ {
		pm.Increment()
	}
	pm.Complete(true)
	pm.Close()

	assert.False(t, pm.IsInteractive())
	assert.Equal(t, 3, pm.current)
	assert.Empty(t, buf.String())
}

func TestFormatUtils(t *testing.T) {
	f := NewFormatUtils()

	assert.Equal(t, "SUMMARY\n-------\n", f.FormatSectionHeader("Summary"))
	assert.Equal(t, "0.1235", f.FormatFloat(0.123456))
	assert.Equal(t, "12.5%", f.FormatPercent(0.125))
	assert.Equal(t, "[1.000, 2.000]", f.FormatVector([]float64{1, 2}, 4))
	assert.Equal(t, "[1.000, 2.000, ..., 5.000, 6.000]", f.FormatVector([]float64{1, 2, 3, 4, 5, 6}, 4))
	assert.Equal(t, "  x: 1\n", f.FormatLabelWithIndent(2, "x", 1))
}

func TestNewLogger(t *testing.T) {
	for _, verbose := range []bool{true, false} {
		logger, err := NewLogger(verbose)
		require.NoError(t, err)
		assert.Equal(t, verbose, logger.Core().Enabled(-1))
		_ = logger.Sync()
	}
	assert.NotNil(t, loggerOrNop(nil))
}
