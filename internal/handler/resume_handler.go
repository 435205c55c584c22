/**
* Name: 			resume_handler.go
* Description: 		이력서 업로드, 목록, 상세, 삭제, 피드백 생성/삭제
* Workflow: 		multipart 파싱 -> review.Service 파이프라인 실행 -> 결과 JSON 반환
 */
package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/models"
	"ResumeSense/internal/review"

	"github.com/gin-gonic/gin"
)

// multipart 헤더와 텍스트 필드 여유분
const formOverhead = 1 << 20

// UploadResume godoc
// @Summary      이력서 업로드 및 분석
// @Description  PDF 이력서와 지원 정보로 미리보기 이미지 생성, 파일 저장, AI 분석, 피드백 저장을 한 번에 수행합니다.
// @Description  <br> 진행 상태는 /ws/status 로 실시간 전달되며 upload-id 로 구분할 수 있습니다.
// @Tags         Resume
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        company-name    formData string true  "회사명"
// @Param        job-title       formData string true  "직무명"
// @Param        job-description formData string true  "직무 설명"
// @Param        upload-id       formData string false "상태 메시지 구분용 클라이언트 ID"
// @Param        file            formData file   true  "PDF 이력서"
// @Success      201 {object} review.UploadResult
// @Failure      400 {object} handler.ErrorResponse "필수 항목 누락, PDF 아님, 변환 실패"
// @Failure      413 {object} handler.ErrorResponse "파일 크기 초과"
// @Failure      429 {object} handler.ErrorResponse "업로드 빈도 제한"
// @Failure      502 {object} handler.ErrorResponse "파일 저장소 오류"
// @Router       /api/resumes [post]
func (h *Handler) UploadResume(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperror.TooLarge(fmt.Sprintf("File exceeds the %d byte limit", h.MaxUploadBytes)))
			return
		}
		_ = c.Error(apperror.Validation("Please select a resume file"))
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		_ = c.Error(apperror.TooLarge(fmt.Sprintf("File exceeds the %d byte limit", h.MaxUploadBytes)))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperror.Validation("Failed to read uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(apperror.Validation("Failed to read uploaded file"))
		return
	}

	result, err := h.Resumes.Upload(c.Request.Context(), review.UploadRequest{
		UploadID:       c.PostForm("upload-id"),
		UserID:         userID(c),
		CompanyName:    c.PostForm("company-name"),
		JobTitle:       c.PostForm("job-title"),
		JobDescription: c.PostForm("job-description"),
		FileName:       fileHeader.Filename,
		Data:           data,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListResumes godoc
// @Summary      내 이력서 목록
// @Description  분석이 끝난(피드백이 있는) 이력서를 최신순으로 반환합니다.
// @Tags         Resume
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} handler.ResumeListResponse
// @Failure      401 {object} handler.ErrorResponse
// @Failure      500 {object} handler.ErrorResponse
// @Router       /api/resumes [get]
func (h *Handler) ListResumes(c *gin.Context) {
	resumes, err := h.Resumes.List(c.Request.Context(), userID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ResumeListResponse{Resumes: resumes})
}

// GetResume godoc
// @Summary      이력서 상세
// @Description  이력서와 피드백을 반환합니다. 다른 사용자의 이력서는 404 입니다.
// @Tags         Resume
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "이력서 ID"
// @Success      200 {object} handler.ResumeResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/resumes/{id} [get]
func (h *Handler) GetResume(c *gin.Context) {
	r, err := h.Resumes.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ResumeResponse{Resume: r})
}

// DeleteResume godoc
// @Summary      이력서 삭제
// @Description  PDF와 미리보기 파일을 삭제한 뒤 레코드를 삭제합니다. 피드백은 함께 삭제됩니다.
// @Tags         Resume
// @Security     BearerAuth
// @Param        id path string true "이력서 ID"
// @Success      204
// @Failure      404 {object} handler.ErrorResponse
// @Failure      502 {object} handler.ErrorResponse "파일 삭제 실패"
// @Router       /api/resumes/{id} [delete]
func (h *Handler) DeleteResume(c *gin.Context) {
	if err := h.Resumes.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateFeedback godoc
// @Summary      피드백 저장
// @Description  피드백이 없는 이력서에 피드백을 저장하고 overall score 를 갱신합니다.
// @Tags         Resume
// @Accept       json
// @Security     BearerAuth
// @Param        id path string true "이력서 ID"
// @Param        request body models.Feedback true "피드백"
// @Success      201
// @Failure      400 {object} handler.ErrorResponse "점수 범위, 팁 형식 오류"
// @Failure      404 {object} handler.ErrorResponse
// @Failure      409 {object} handler.ErrorResponse "이미 피드백 존재"
// @Router       /api/resumes/{id}/feedback [post]
func (h *Handler) CreateFeedback(c *gin.Context) {
	var f models.Feedback
	if err := c.ShouldBindJSON(&f); err != nil {
		_ = c.Error(apperror.Validation("Invalid feedback payload"))
		return
	}
	if err := h.Resumes.CreateFeedback(c.Request.Context(), userID(c), c.Param("id"), f); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusCreated)
}

// DeleteFeedback godoc
// @Summary      피드백 삭제
// @Description  피드백을 삭제하고 overall score 를 비웁니다.
// @Tags         Resume
// @Security     BearerAuth
// @Param        id path string true "이력서 ID"
// @Success      204
// @Failure      404 {object} handler.ErrorResponse
// @Router       /api/resumes/{id}/feedback [delete]
func (h *Handler) DeleteFeedback(c *gin.Context) {
	if err := h.Resumes.DeleteFeedback(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
