package util

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAllowedExtension(t *testing.T) {
	allowed := []string{".pdf", "docx", ".TXT"}

	tests := []struct {
		name string
		file string
		want bool
	}{
		{name: "pdf", file: "notes.pdf", want: true},
		{name: "upper case", file: "NOTES.PDF", want: true},
		{name: "no dot in config", file: "homework.docx", want: true},
		{name: "config upper case", file: "readme.txt", want: true},
		{name: "not allowed", file: "virus.exe", want: false},
		{name: "no extension", file: "Makefile", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAllowedExtension(tt.file, allowed))
		})
	}
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "passwd", SecureFilename("../../etc/passwd"))
	assert.Equal(t, "my_notes.pdf", SecureFilename("my notes.pdf"))
	assert.Equal(t, "report.txt", SecureFilename(`C:\Users\x\report.txt`))
	assert.Equal(t, "", SecureFilename("../.."))
}

func TestValidateMimeType(t *testing.T) {
	mime, r, err := ValidateMimeType(bytes.NewReader([]byte("%PDF-1.4 body")), AllowedMaterialMimeTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(all), "sniffed bytes are replayed")

	mime, _, err = ValidateMimeType(bytes.NewReader([]byte("plain words here")), AllowedMaterialMimeTypes)
	require.NoError(t, err)
	assert.Contains(t, mime, MimeText)

	_, _, err = ValidateMimeType(bytes.NewReader([]byte("\x89PNG\r\n\x1a\n....")), AllowedMaterialMimeTypes)
	assert.ErrorIs(t, err, ErrInvalidFileType)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateMimeTypeLongInput(t *testing.T) {
	body := bytes.Repeat([]byte("a"), 2048)
	_, r, err := ValidateMimeType(bytes.NewReader(body), AllowedMaterialMimeTypes)
	require.NoError(t, err)
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, all, 2048)
}
