/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: input.go
Description: Bounded file reader. Loads a window of a file into memory, enforcing the
size cap and reporting whether the window was cut short.
*/

package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Input is a window of a file read into memory
type Input struct {
	Name      string // Base name for display
	Offset    int64  // File offset of Data[0]
	FileSize  int64
	Data      []byte
	Truncated bool // The window was cut short by the size cap
}

// ReadInput reads length bytes of path starting at offset. A negative length reads to
// the end of the file. At most maxSize bytes are read; Truncated reports the cut.
func ReadInput(path string, offset, length, maxSize int64) (*Input, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	size := info.Size()
	if offset < 0 {
		return nil, fmt.Errorf("offset %d must not be negative", offset)
	}
	if offset >= size {
		return nil, fmt.Errorf("offset %d is beyond file size %d", offset, size)
	}

	available := size - offset
	want := available
	if length >= 0 && length < want {
		want = length
	}
	truncated := false
	if maxSize > 0 && want > maxSize {
		want = maxSize
		truncated = true
	}

	data := make([]byte, want)
	n, err := file.ReadAt(data, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return &Input{
		Name:      info.Name(),
		Offset:    offset,
		FileSize:  size,
		Data:      data[:n],
		Truncated: truncated,
	}, nil
}
