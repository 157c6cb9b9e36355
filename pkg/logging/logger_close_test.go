/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_close_test.go
Description: Tests that Close reports a failure to close the log file.
*/

package logging

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseReportsFileError(t *testing.T) {
	config := DefaultLoggerConfig()
	config.OutputDir = t.TempDir()
	config.Console = io.Discard

	logger, err := NewLogger(config)
	require.NoError(t, err)
	require.NotNil(t, logger.fileHandle)

	// Closing the handle underneath the logger makes its own Close fail
	require.NoError(t, logger.fileHandle.Close())

	err = logger.Close()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrClosed)
	assert.Contains(t, err.Error(), "failed to close log file")

	assert.NoError(t, logger.Close(), "a second Close has nothing left to close")
}
