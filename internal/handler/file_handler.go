/**
* Name: 			file_handler.go
* Description: 		저장된 이력서/미리보기 파일 링크 발급 및 다운로드
* Workflow: 		경로 소유권 확인 -> 서명 URL 발급 또는 스트리밍
 */
package handler

import (
	"errors"
	"net/http"
	"strings"

	"ResumeSense/internal/apperror"
	"ResumeSense/internal/objectstore"
	"ResumeSense/internal/review"

	"github.com/gin-gonic/gin"
)

// FileURL godoc
// @Summary      파일 서명 URL 발급
// @Description  본인 파일(<userId>/...)에 대해 만료 시간이 있는 다운로드 URL 을 발급합니다.
// @Tags         Files
// @Produce      json
// @Security     BearerAuth
// @Param        path query string true "저장 경로 (resumePath 또는 imagePath)"
// @Success      200 {object} handler.FileURLResponse
// @Failure      400 {object} handler.ErrorResponse "잘못된 경로"
// @Failure      403 {object} handler.ErrorResponse "다른 사용자의 파일"
// @Router       /api/files/url [get]
func (h *Handler) FileURL(c *gin.Context) {
	url, err := h.Resumes.FileURL(c.Request.Context(), userID(c), c.Query("path"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, FileURLResponse{URL: url})
}

// DownloadFile godoc
// @Summary      파일 다운로드
// @Description  본인 파일을 바로 스트리밍합니다.
// @Tags         Files
// @Produce      application/pdf
// @Produce      image/png
// @Security     BearerAuth
// @Param        path query string true "저장 경로"
// @Success      200 {file} file "파일 바이너리"
// @Failure      403 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse "파일을 찾을 수 없음"
// @Router       /api/files/download [get]
func (h *Handler) DownloadFile(c *gin.Context) {
	rc, contentType, err := h.Resumes.OpenFile(c.Request.Context(), userID(c), c.Query("path"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// ServeSignedFile godoc
// @Summary      서명된 파일 링크
// @Description  /api/files/url 이 발급한 로컬 저장소 링크를 처리합니다. 만료되었거나 서명이 틀리면 403 입니다.
// @Tags         Files
// @Param        path      path  string true "저장 경로"
// @Param        expires   query string true "만료 시각 (unix)"
// @Param        signature query string true "HMAC 서명"
// @Success      200 {file} file "파일 바이너리"
// @Failure      403 {object} handler.ErrorResponse
// @Failure      404 {object} handler.ErrorResponse
// @Router       /files/{path} [get]
func (h *Handler) ServeSignedFile(c *gin.Context) {
	if h.Files == nil {
		_ = c.Error(apperror.NotFound("File not found"))
		return
	}

	objectPath := strings.TrimPrefix(c.Param("path"), "/")
	if err := h.Files.Verify(objectPath, c.Query("expires"), c.Query("signature")); err != nil {
		_ = c.Error(apperror.Forbidden("Invalid or expired link"))
		return
	}

	rc, err := h.Files.Download(c.Request.Context(), objectPath)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			_ = c.Error(apperror.NotFound("File not found"))
			return
		}
		_ = c.Error(apperror.Internal("Failed to read file", err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, review.ContentType(objectPath), rc, map[string]string{
		"Cache-Control": "private, max-age=3600",
	})
}
