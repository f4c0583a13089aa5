package service

import (
	"bytes"
	"context"
	"io"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n")

func pdfUpload(subjectID uint) MaterialUpload {
	return MaterialUpload{
		Title:     "Algebra notes",
		SubjectID: subjectID,
		FileName:  "../algebra notes.pdf",
		Size:      int64(len(pdfBody)),
		File:      bytes.NewReader(pdfBody),
	}
}

func TestUploadMaterial(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	ctx := context.Background()

	m, err := svc.Upload(ctx, as(w.teacher), pdfUpload(w.maths.ID))
	require.NoError(t, err)
	assert.Equal(t, "algebra_notes.pdf", m.FileName)
	assert.Equal(t, util.MimePDF, m.ContentType)
	assert.True(t, strings.HasPrefix(m.FilePath, "materials/"))
	assert.True(t, strings.HasSuffix(m.FilePath, ".pdf"))
	assert.Equal(t, w.teacher.ID, m.TeacherID)
	assert.Equal(t, pdfBody, w.storage.Files[m.FilePath])

	_, body, err := svc.Download(ctx, as(w.parent), m.ID)
	require.NoError(t, err)
	defer body.Close()
	got, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, got)
}

func TestUploadMaterialRejections(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	ctx := context.Background()

	withName := func(name string, body []byte) MaterialUpload {
		u := pdfUpload(w.maths.ID)
		u.FileName, u.File, u.Size = name, bytes.NewReader(body), int64(len(body))
		return u
	}
	tooBig := pdfUpload(w.maths.ID)
	tooBig.Size = 2 << 20
	noTitle := pdfUpload(w.maths.ID)
	noTitle.Title = "  "
	noFile := pdfUpload(w.maths.ID)
	noFile.File = nil

	tests := []struct {
		name   string
		upload MaterialUpload
		caller model.Account
		want   error
	}{
		{"extension", withName("tool.exe", pdfBody), w.teacher, util.ErrInvalidFileType},
		{"sniffed content", withName("image.pdf", []byte("\x89PNG\r\n\x1a\n0000")), w.teacher, util.ErrInvalidFileType},
		{"size", tooBig, w.teacher, util.ErrFileTooLarge},
		{"title", noTitle, w.teacher, util.ErrValidation},
		{"no file", noFile, w.teacher, util.ErrNoFile},
		{"not subject owner", pdfUpload(w.maths.ID), w.otherTeacher, util.ErrPermissionDenied},
		{"missing subject", pdfUpload(999), w.teacher, util.ErrSubjectNotFound},
		{"parent", pdfUpload(w.maths.ID), w.parent, util.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, as(tt.caller), tt.upload)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, w.storage.Files)
	assert.Zero(t, w.materials.Len())
}

func TestUploadRemovesFileWhenRowFails(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	w.materials.FailWrite = true

	_, err := svc.Upload(context.Background(), as(w.teacher), pdfUpload(w.maths.ID))
	assert.Error(t, err)
	assert.Empty(t, w.storage.Files)
}

func TestDeleteMaterial(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	ctx := context.Background()

	m, err := svc.Upload(ctx, as(w.teacher), pdfUpload(w.maths.ID))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, as(w.otherTeacher), m.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Delete(ctx, as(w.parent), m.ID), util.ErrPermissionDenied)

	// 文件删除失败时记录保留
	w.storage.FailDelete = true
	assert.Error(t, svc.Delete(ctx, as(w.teacher), m.ID))
	_, err = w.materials.FindByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Contains(t, w.storage.Files, m.FilePath)

	w.storage.FailDelete = false
	require.NoError(t, svc.Delete(ctx, as(w.teacher), m.ID))
	_, err = w.materials.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)
	assert.NotContains(t, w.storage.Files, m.FilePath)

	assert.ErrorIs(t, svc.Delete(ctx, as(w.teacher), m.ID), util.ErrNotFound)
}

func TestMaterialVisibility(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	ctx := context.Background()

	m, err := svc.Upload(ctx, as(w.teacher), pdfUpload(w.maths.ID))
	require.NoError(t, err)

	list, err := svc.List(ctx, as(w.teacher))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(ctx, as(w.otherTeacher))
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.List(ctx, as(w.parent))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.List(ctx, as(w.otherParent))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Get(ctx, as(w.otherParent), m.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, _, err = svc.Download(ctx, as(w.otherParent), m.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = svc.Get(ctx, as(w.parent), 999)
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)

	list, err = svc.ListForStudent(ctx, as(w.parent), w.child.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = svc.ListForStudent(ctx, as(w.otherTeacher), w.child.ID)
	require.NoError(t, err, "subject teacher of the student")
	assert.Len(t, list, 1)
	_, err = svc.ListForStudent(ctx, as(w.otherParent), w.child.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestDownloadMissingFile(t *testing.T) {
	w := newWorld(t)
	svc := w.materialService()
	ctx := context.Background()

	m, err := svc.Upload(ctx, as(w.teacher), pdfUpload(w.maths.ID))
	require.NoError(t, err)
	delete(w.storage.Files, m.FilePath)

	_, _, err = svc.Download(ctx, as(w.teacher), m.ID)
	assert.ErrorIs(t, err, util.ErrFileNotFound)
}
