package service

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"seclink_backend/internal/access"
	"seclink_backend/internal/config"
	"seclink_backend/internal/model"
	"seclink_backend/internal/util"
	"seclink_backend/pkg/logger"
	"seclink_backend/pkg/monitoring"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaterialUpload 上传参数，File 只会被顺序读取一次
type MaterialUpload struct {
	Title     string
	SubjectID uint
	FileName  string
	Size      int64
	File      io.Reader
}

type MaterialService struct {
	Materials MaterialStore
	Subjects  SubjectStore
	Students  StudentStore
	Storage   StorageProvider
	Cfg       *config.StorageConfig
}

func NewMaterialService(materials MaterialStore, subjects SubjectStore, students StudentStore, storage StorageProvider, cfg *config.StorageConfig) *MaterialService {
	return &MaterialService{
		Materials: materials,
		Subjects:  subjects,
		Students:  students,
		Storage:   storage,
		Cfg:       cfg,
	}
}

// MaxUploadBytes 单个文件上限，0 表示不限制
func (s *MaterialService) MaxUploadBytes() int64 {
	return s.Cfg.MaxUploadMB << 20
}

// Upload 先写文件再写记录，记录写入失败时删除已上传的文件
func (s *MaterialService) Upload(ctx context.Context, ac access.AuthContext, in MaterialUpload) (*model.LearningMaterial, error) {
	if err := access.RequireRole(ac, model.RoleTeacher); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, util.Validationf("title is required")
	}
	if in.File == nil || in.FileName == "" {
		return nil, util.ErrNoFile
	}
	name := util.SecureFilename(in.FileName)
	if name == "" || !util.HasAllowedExtension(name, s.Cfg.AllowedExtensions) {
		return nil, util.ErrInvalidFileType
	}
	if s.Cfg.MaxUploadMB > 0 && in.Size > s.MaxUploadBytes() {
		return nil, util.ErrFileTooLarge
	}

	subject, err := s.Subjects.FindByID(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := access.RequireOwner(ac, subject.TeacherID); err != nil {
		return nil, err
	}

	mimeType, body, err := util.ValidateMimeType(in.File, util.AllowedMaterialMimeTypes)
	if err != nil {
		return nil, err
	}

	key := path.Join("materials", uuid.NewString()+strings.ToLower(filepath.Ext(name)))
	if _, err := s.Storage.Upload(ctx, key, body, in.Size, mimeType); err != nil {
		return nil, err
	}

	material := &model.LearningMaterial{
		Title:       title,
		FilePath:    key,
		FileName:    name,
		ContentType: mimeType,
		Size:        in.Size,
		TeacherID:   ac.SubjectID,
		SubjectID:   subject.ID,
	}
	if err := s.Materials.Create(ctx, material); err != nil {
		if derr := s.Storage.Delete(ctx, key); derr != nil {
			logger.Log.Error("failed to remove orphaned upload", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	monitoring.MaterialOperations.WithLabelValues("upload").Inc()
	logger.Log.Info("learning material uploaded",
		zap.Uint("material_id", material.ID),
		zap.Uint("subject_id", material.SubjectID),
		zap.String("content_type", mimeType),
		zap.Int64("size", in.Size),
	)
	return material, nil
}

func (s *MaterialService) List(ctx context.Context, ac access.AuthContext) ([]model.LearningMaterial, error) {
	if ac.IsTeacher() {
		return s.Materials.ListByTeacher(ctx, ac.SubjectID)
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	return s.Materials.ListBySubjects(ctx, reach.SubjectIDList())
}

func (s *MaterialService) Get(ctx context.Context, ac access.AuthContext, id uint) (*model.LearningMaterial, error) {
	material, err := s.Materials.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reach, err := reachFor(ctx, s.Students, ac)
	if err != nil {
		return nil, err
	}
	if err := access.CanReadMaterial(ac, material, reach); err != nil {
		return nil, err
	}
	return material, nil
}

// Download 调用方负责关闭返回的 ReadCloser
func (s *MaterialService) Download(ctx context.Context, ac access.AuthContext, id uint) (*model.LearningMaterial, io.ReadCloser, error) {
	material, err := s.Get(ctx, ac, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.Storage.Open(ctx, material.FilePath)
	if err != nil {
		return nil, nil, err
	}
	monitoring.MaterialOperations.WithLabelValues("download").Inc()
	return material, body, nil
}

// ListForStudent 学生所选科目下的全部资料
func (s *MaterialService) ListForStudent(ctx context.Context, ac access.AuthContext, studentID uint) ([]model.LearningMaterial, error) {
	student, err := visibleStudent(ctx, s.Students, ac, studentID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(student.Subjects))
	for _, sub := range student.Subjects {
		ids = append(ids, sub.ID)
	}
	return s.Materials.ListBySubjects(ctx, ids)
}

// Delete 记录与文件一起删除，文件删除失败时记录保留
func (s *MaterialService) Delete(ctx context.Context, ac access.AuthContext, id uint) error {
	material, err := s.Materials.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := access.CanDeleteMaterial(ac, material); err != nil {
		return err
	}
	err = s.Materials.Delete(ctx, id, func() error {
		return s.Storage.Delete(ctx, material.FilePath)
	})
	if err != nil {
		return err
	}
	monitoring.MaterialOperations.WithLabelValues("delete").Inc()
	logger.Log.Info("learning material deleted", zap.Uint("material_id", id))
	return nil
}
