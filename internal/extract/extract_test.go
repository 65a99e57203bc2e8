package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		declared string
		want     string
		wantErr  bool
	}{
		{"declared pdf", "notes.bin", "application/pdf", "application/pdf", false},
		{"declared text with charset", "notes", "text/plain; charset=utf-8", "text/plain", false},
		{"pdf from extension", "Lecture.PDF", "", "application/pdf", false},
		{"txt from octet-stream", "notes.txt", "application/octet-stream", "text/plain", false},
		{"unknown extension", "notes.docx", "", "", true},
		{"unsupported declared", "notes.doc", "application/msword", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentType(tt.filename, tt.declared)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTextPlain(t *testing.T) {
	got, err := Text("text/plain", []byte("Cells divide."))
	require.NoError(t, err)
	assert.Equal(t, "Cells divide.", got)
}

func TestPDFTextRejectsGarbage(t *testing.T) {
	_, err := PDFText([]byte("definitely not a pdf"))
	assert.Error(t, err)

	_, err = Text("application/pdf", []byte("%PDF-1.4 truncated"))
	assert.Error(t, err)
}
