package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/admission-tracker/internal/apperror"
)

func TestExtractText_MissingFileIsNotFound(t *testing.T) {
	_, err := NewPDFParserService().ExtractText(filepath.Join(t.TempDir(), "missing.pdf"))

	assert.True(t, apperror.IsNotFound(err))
}

func TestExtractText_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, not a pdf"), 0o644))

	_, err := NewPDFParserService().ExtractText(path)

	assert.Error(t, err)
	assert.False(t, apperror.IsNotFound(err))
}

func TestCleanText(t *testing.T) {
	got := CleanText("  Jane Doe \n\n\n   Skills:  \n  Go, SQL\n\n")

	assert.Equal(t, "Jane Doe\nSkills:\nGo, SQL", got)
}
