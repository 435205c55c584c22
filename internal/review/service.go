/**
 * Name: review
 * Description: 이력서 업로드/분석 파이프라인과 이력서, 피드백, 파일 조회
 * Workflow:
 *   1. 입력 검증 (회사명, 직무, 직무 설명, PDF 파일)
 *   2. PDF 1페이지 -> PNG 변환
 *   3. PDF, PNG 병렬 업로드 후 resumes 레코드 생성
 *   4. AI 분석 (실패 시 기본 피드백) -> feedback 저장
 *   5. 단계마다 상태 발행 (converting -> uploading -> analyzing -> completed)
 */
package review

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/events"
	"ResumeSense/internal/llm"
	"ResumeSense/internal/logging"
	"ResumeSense/internal/metrics"
	"ResumeSense/internal/models"
	"ResumeSense/internal/objectstore"
	"ResumeSense/internal/pdfconv"
	"ResumeSense/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the relational persistence used by the service.
type Store interface {
	CreateResume(ctx context.Context, r models.NewResume) (string, error)
	GetResume(ctx context.Context, id string) (models.Resume, error)
	GetResumeRecord(ctx context.Context, id string) (models.Resume, error)
	ListUserResumes(ctx context.Context, userID string) ([]models.Resume, error)
	DeleteResume(ctx context.Context, id string) error
	CreateFeedback(ctx context.Context, resumeID string, f models.Feedback) error
	DeleteFeedback(ctx context.Context, resumeID string) error
}

type Analyzer interface {
	Analyze(ctx context.Context, in llm.Input) llm.Result
}

// Converter renders page 1 of a PDF.
type Converter func(pdfData []byte, fileName string, dpi float64) (*pdfconv.Image, error)

type Options struct {
	MaxUploadBytes int64
	PreviewDPI     float64
	SignedURLTTL   time.Duration
}

type Service struct {
	store     Store
	bucket    objectstore.Bucket
	analyzer  Analyzer
	publisher events.Publisher
	convert   Converter
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, bucket objectstore.Bucket, analyzer Analyzer, publisher events.Publisher, opts Options, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		store:     store,
		bucket:    bucket,
		analyzer:  analyzer,
		publisher: publisher,
		convert:   pdfconv.ConvertPdfToImage,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// UploadRequest is one submitted resume.
type UploadRequest struct {
	UploadID       string
	UserID         string
	CompanyName    string
	JobTitle       string
	JobDescription string
	FileName       string
	Data           []byte
}

type UploadResult struct {
	UploadID string          `json:"upload_id"`
	ResumeID string          `json:"resume_id"`
	Feedback models.Feedback `json:"feedback"`
	Fallback bool            `json:"fallback"`
}

// Upload runs the whole pipeline. A failed analysis still stores the
// fallback feedback; only validation, conversion, upload and database
// failures are returned as errors.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.UploadID == "" {
		req.UploadID = uuid.NewString()
	}
	log := logging.WithUser(s.logger, req.UserID).With("upload_id", req.UploadID)

	if err := s.validate(&req); err != nil {
		return nil, err
	}

	result, err := s.upload(ctx, log, req)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(models.StageFailed)).Inc()
		s.publish(ctx, req, "", models.StageFailed)
		return nil, err
	}
	metrics.UploadsTotal.WithLabelValues(string(models.StageCompleted)).Inc()
	return result, nil
}

func (s *Service) upload(ctx context.Context, log *slog.Logger, req UploadRequest) (*UploadResult, error) {
	s.publish(ctx, req, "", models.StageConverting)
	image, err := s.convert(req.Data, req.FileName, s.opts.PreviewDPI)
	if err != nil {
		log.Warn("pdf conversion failed", "file", req.FileName, "error", err)
		return nil, apperror.Validation("Failed to convert PDF to image")
	}

	s.publish(ctx, req, "", models.StageUploading)
	now := s.now()
	pdfPath := objectstore.ObjectPath(req.UserID, objectstore.KindPDF, req.FileName, now)
	imagePath := objectstore.ObjectPath(req.UserID, objectstore.KindImage, image.FileName, now)

	if err := s.uploadPair(ctx, req.Data, pdfPath, image.Data, imagePath); err != nil {
		log.Error("file upload failed", "error", err)
		return nil, apperror.External("Failed to upload resume files", err)
	}

	resumeID, err := s.store.CreateResume(ctx, models.NewResume{
		UserID:         req.UserID,
		CompanyName:    req.CompanyName,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		ResumePath:     pdfPath,
		ImagePath:      imagePath,
	})
	if err != nil {
		s.removeFiles(context.WithoutCancel(ctx), log, pdfPath, imagePath)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.Unauthorized("User no longer exists")
		}
		return nil, apperror.Internal("Failed to create resume record", err)
	}
	log = logging.WithResume(log, resumeID)

	s.publish(ctx, req, resumeID, models.StageAnalyzing)
	start := time.Now()
	analysis := s.analyzer.Analyze(ctx, llm.Input{
		FileName:       req.FileName,
		MimeType:       pdfconv.MimePDF,
		Data:           req.Data,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
	})
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	metrics.AnalysesTotal.WithLabelValues(metrics.AnalysisResult(analysis.Fallback)).Inc()
	if analysis.Fallback {
		log.Warn("analysis used fallback feedback", "reason", analysis.Reason)
	}

	if err := s.store.CreateFeedback(ctx, resumeID, analysis.Feedback); err != nil {
		// 피드백 없는 이력서는 목록에 보이지 않으므로 함께 정리
		cleanup := context.WithoutCancel(ctx)
		if delErr := s.store.DeleteResume(cleanup, resumeID); delErr != nil {
			log.Error("failed to remove resume after feedback error", "error", delErr)
		}
		s.removeFiles(cleanup, log, pdfPath, imagePath)
		return nil, apperror.Internal("Failed to save feedback", err)
	}

	s.publish(ctx, req, resumeID, models.StageCompleted)
	log.Info("resume analyzed", "overall_score", analysis.Feedback.OverallScore, "fallback", analysis.Fallback)

	return &UploadResult{
		UploadID: req.UploadID,
		ResumeID: resumeID,
		Feedback: analysis.Feedback,
		Fallback: analysis.Fallback,
	}, nil
}

func (s *Service) validate(req *UploadRequest) error {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.JobTitle = strings.TrimSpace(req.JobTitle)
	req.JobDescription = strings.TrimSpace(req.JobDescription)

	if len(req.Data) == 0 {
		return apperror.Validation("Please select a resume file")
	}
	if req.CompanyName == "" || req.JobTitle == "" || req.JobDescription == "" {
		return apperror.Validation("Please fill in all fields")
	}
	if s.opts.MaxUploadBytes > 0 && int64(len(req.Data)) > s.opts.MaxUploadBytes {
		return apperror.TooLarge(fmt.Sprintf("File exceeds the %d byte limit", s.opts.MaxUploadBytes))
	}
	if http.DetectContentType(req.Data) != pdfconv.MimePDF {
		return apperror.Validation("Only PDF files are supported")
	}
	if req.FileName == "" {
		req.FileName = "resume.pdf"
	}
	return nil
}

// uploadPair uploads the PDF and its preview in parallel. On failure the
// object that did make it is removed.
func (s *Service) uploadPair(ctx context.Context, pdfData []byte, pdfPath string, imageData []byte, imagePath string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.bucket.Upload(gctx, pdfPath, pdfconv.MimePDF, bytes.NewReader(pdfData)); err != nil {
			return fmt.Errorf("upload pdf: %w", err)
		}
		metrics.UploadBytesTotal.WithLabelValues(string(objectstore.KindPDF)).Add(float64(len(pdfData)))
		return nil
	})
	g.Go(func() error {
		if err := s.bucket.Upload(gctx, imagePath, "image/png", bytes.NewReader(imageData)); err != nil {
			return fmt.Errorf("upload image: %w", err)
		}
		metrics.UploadBytesTotal.WithLabelValues(string(objectstore.KindImage)).Add(float64(len(imageData)))
		return nil
	})

	err := g.Wait()
	if err != nil {
		s.removeFiles(context.WithoutCancel(ctx), s.logger, pdfPath, imagePath)
	}
	return err
}

// removeFiles deletes stored objects in parallel.
func (s *Service) removeFiles(ctx context.Context, log *slog.Logger, paths ...string) error {
	var g errgroup.Group
	for _, p := range paths {
		g.Go(func() error {
			if err := s.bucket.Delete(ctx, p); err != nil {
				log.Warn("failed to delete stored file", "path", p, "error", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) publish(ctx context.Context, req UploadRequest, resumeID string, stage models.Stage) {
	update := models.StatusUpdate{
		UploadID:  req.UploadID,
		ResumeID:  resumeID,
		UserID:    req.UserID,
		Stage:     stage,
		Message:   models.StatusMessages[stage],
		Timestamp: s.now(),
	}
	// 상태 전파 실패는 업로드를 막지 않음
	if err := s.publisher.Publish(ctx, update); err != nil {
		s.logger.Debug("status publish failed", "upload_id", req.UploadID, "error", err)
	}
}

// List returns the user's analyzed resumes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Resume, error) {
	resumes, err := s.store.ListUserResumes(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Failed to fetch resumes", err)
	}
	return resumes, nil
}

// Get returns a resume with its feedback. Other users' resumes are reported
// as not found.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (models.Resume, error) {
	r, err := s.store.GetResume(ctx, resumeID)
	if err != nil {
		return models.Resume{}, notFoundOr(err, "Resume not found", "Failed to fetch resume")
	}
	if r.UserID != userID {
		return models.Resume{}, apperror.NotFound("Resume not found")
	}
	return r, nil
}

// Delete removes both stored files in parallel, then the row (and its
// feedback by cascade).
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	r, err := s.owned(ctx, userID, resumeID)
	if err != nil {
		return err
	}

	if err := s.removeFiles(ctx, logging.WithResume(s.logger, resumeID), r.ResumePath, r.ImagePath); err != nil {
		return apperror.External("Failed to delete resume files", err)
	}
	if err := s.store.DeleteResume(ctx, resumeID); err != nil {
		return notFoundOr(err, "Resume not found", "Failed to delete resume")
	}
	s.logger.Info("resume deleted", "resume_id", resumeID, "user_id", userID)
	return nil
}

// CreateFeedback stores feedback for a resume that has none yet.
func (s *Service) CreateFeedback(ctx context.Context, userID, resumeID string, f models.Feedback) error {
	if _, err := s.owned(ctx, userID, resumeID); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return apperror.Validation(err.Error())
	}
	if err := s.store.CreateFeedback(ctx, resumeID, f); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return apperror.Conflict("Feedback already exists for this resume")
		}
		return notFoundOr(err, "Resume not found", "Failed to save feedback")
	}
	return nil
}

// DeleteFeedback removes the feedback and clears the resume's score.
func (s *Service) DeleteFeedback(ctx context.Context, userID, resumeID string) error {
	if _, err := s.owned(ctx, userID, resumeID); err != nil {
		return err
	}
	if err := s.store.DeleteFeedback(ctx, resumeID); err != nil {
		return notFoundOr(err, "Feedback not found", "Failed to delete feedback")
	}
	return nil
}

// FileURL returns a time-limited download link for one of the user's files.
func (s *Service) FileURL(ctx context.Context, userID, objectPath string) (string, error) {
	clean, err := s.ownedPath(userID, objectPath)
	if err != nil {
		return "", err
	}
	url, err := s.bucket.SignedURL(ctx, clean, s.opts.SignedURLTTL)
	if err != nil {
		return "", apperror.External("Failed to create signed URL", err)
	}
	return url, nil
}

// OpenFile streams one of the user's files. The caller closes the reader.
func (s *Service) OpenFile(ctx context.Context, userID, objectPath string) (io.ReadCloser, string, error) {
	clean, err := s.ownedPath(userID, objectPath)
	if err != nil {
		return nil, "", err
	}
	rc, err := s.bucket.Download(ctx, clean)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, "", apperror.NotFound("File not found")
		}
		return nil, "", apperror.External("Failed to download file", err)
	}
	return rc, ContentType(clean), nil
}

// ContentType guesses the MIME type from the object extension.
func ContentType(objectPath string) string {
	if ct := mime.TypeByExtension(path.Ext(objectPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *Service) owned(ctx context.Context, userID, resumeID string) (models.Resume, error) {
	r, err := s.store.GetResumeRecord(ctx, resumeID)
	if err != nil {
		return models.Resume{}, notFoundOr(err, "Resume not found", "Failed to fetch resume")
	}
	if r.UserID != userID {
		return models.Resume{}, apperror.NotFound("Resume not found")
	}
	return r, nil
}

func (s *Service) ownedPath(userID, objectPath string) (string, error) {
	clean, err := objectstore.CleanPath(objectPath)
	if err != nil {
		return "", apperror.Validation("Invalid file path")
	}
	if !objectstore.OwnedBy(clean, userID) {
		return "", apperror.Forbidden("Access denied")
	}
	return clean, nil
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(internal, err)
}
