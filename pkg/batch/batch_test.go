/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch_test.go
Description: Tests for the bounded file reader and the batch runner.
*/

package batch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/hexaminer/pkg/batch"
	"github.com/kleascm/hexaminer/pkg/engine"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestReadInput(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.bin", []byte("0123456789"))

	input, err := batch.ReadInput(path, 2, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("234"), input.Data)
	assert.Equal(t, "data.bin", input.Name)
	assert.Equal(t, int64(2), input.Offset)
	assert.Equal(t, int64(10), input.FileSize)
	assert.False(t, input.Truncated)

	input, err = batch.ReadInput(path, 4, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("456789"), input.Data)

	input, err = batch.ReadInput(path, 0, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), input.Data)

	input, err = batch.ReadInput(path, 0, -1, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), input.Data)
	assert.True(t, input.Truncated)
}

func TestReadInputErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.bin", []byte("0123"))

	_, err := batch.ReadInput(path, 4, -1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "beyond file size 4")

	_, err = batch.ReadInput(path, -1, -1, 0)
	assert.Error(t, err)

	_, err = batch.ReadInput(filepath.Join(dir, "missing"), 0, -1, 0)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = batch.ReadInput(dir, 0, -1, 0)
	assert.Error(t, err)
}

func TestRunnerKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.png", append(append([]byte{}, pngMagic...), 0, 0)),
		filepath.Join(dir, "missing.bin"),
		writeFile(t, dir, "b.txt", []byte("plain text")),
		writeFile(t, dir, "c.elf", []byte{0x7F, 'E', 'L', 'F', 2, 1, 1, 0}),
	}

	runner := batch.NewRunner(batch.Config{Workers: 3, Length: -1}, nil, nil)
	summary, err := runner.Run(context.Background(), paths)
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, 4)
	assert.Equal(t, 3, summary.Workers)
	assert.Equal(t, 3, summary.Analyzed)
	assert.Equal(t, 1, summary.Failed)

	for i, o := range summary.Outcomes {
		require.NotNil(t, o)
		assert.Equal(t, paths[i], o.Path)
	}

	png := summary.Outcomes[0]
	require.NoError(t, png.Err)
	require.NotNil(t, png.Report.Best())
	assert.Equal(t, "a.png", png.Report.Source)
	assert.Equal(t, "File Signature Detection", png.Report.Best().DataType)

	missing := summary.Outcomes[1]
	assert.ErrorIs(t, missing.Err, os.ErrNotExist)
	assert.Nil(t, missing.Report)

	elf := summary.Outcomes[3]
	require.NoError(t, elf.Err)
	dataTypes := make([]string, 0, len(elf.Report.Results))
	for _, r := range elf.Report.Results {
		dataTypes = append(dataTypes, r.DataType)
	}
	assert.Contains(t, dataTypes, "ELF File")
}

func TestRunnerUsesFactoryPerWorker(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 6)
	for _, name := range []string{"1", "2", "3", "4", "5", "6"} {
		paths = append(paths, writeFile(t, dir, name, pngMagic))
	}

	engines := 0
	factory := func() *engine.Engine {
		engines++
		return engine.NewEngine(nil)
	}

	summary, err := batch.NewRunner(batch.Config{Workers: 2, Length: -1}, factory, nil).Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Equal(t, 2, engines)
	assert.Equal(t, 6, summary.Analyzed)
}

func TestRunnerWindowAndCap(t *testing.T) {
	path := writeFile(t, t.TempDir(), "padded.bin", append([]byte("junk"), pngMagic...))

	summary, err := batch.NewRunner(batch.Config{Workers: 1, Offset: 4, Length: -1, MaxSize: 4}, nil, nil).
		Run(context.Background(), []string{path})
	require.NoError(t, err)

	o := summary.Outcomes[0]
	require.NoError(t, o.Err)
	assert.True(t, o.Input.Truncated)
	assert.Equal(t, int64(4), o.Report.Offset)
	assert.Equal(t, int64(4), o.Report.Size)
}

func TestRunnerCancelled(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.bin", pngMagic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := batch.NewRunner(batch.Config{Workers: 1, Length: -1}, nil, nil).
		Run(ctx, []string{path, path, path})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Len(t, summary.Outcomes, 3)
	assert.LessOrEqual(t, summary.Analyzed, 3)
}

func TestRunnerNoFiles(t *testing.T) {
	summary, err := batch.NewRunner(batch.Config{}, nil, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summary.Outcomes)
	assert.Equal(t, 0, summary.Analyzed)
}
