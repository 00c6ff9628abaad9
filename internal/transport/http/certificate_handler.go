package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/media"
	"github.com/viralacademy/academy-api/internal/service"
	"github.com/viralacademy/academy-api/internal/util"
)

type CertificateHandler struct {
	certificates *service.CertificateService
	processor    media.Processor
}

func RegisterCertificates(e *echo.Echo, auth *service.AuthService, certificates *service.CertificateService, processor media.Processor) {
	handler := &CertificateHandler{certificates: certificates, processor: processor}

	group := e.Group("/api/v1", RequireAuth(auth))
	group.POST("/courses/:id/certificate", handler.issue)
	group.GET("/me/certificates", handler.list)
	group.GET("/courses/:id/certificate", handler.get)

	admin := e.Group("/api/v1/admin/certificates", RequireAuth(auth), RequireAdmin())
	admin.PUT("/signature", handler.uploadSignature)
}

func (h *CertificateHandler) issue(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid course id"))
	}

	cert, err := h.certificates.Issue(c.Request().Context(), user, courseID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			return c.JSON(http.StatusNotFound, util.Error("course not found"))
		case errors.Is(err, service.ErrNotEnrolled):
			return c.JSON(http.StatusForbidden, util.Error(err.Error()))
		case errors.Is(err, service.ErrCourseNotCompleted):
			return c.JSON(http.StatusConflict, util.Error(err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
		}
	}
	return c.JSON(http.StatusCreated, h.buildCertificate(c, cert))
}

func (h *CertificateHandler) list(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	certs, err := h.certificates.ListByUser(c.Request().Context(), user.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	items := make([]util.Envelope, 0, len(certs))
	for i := range certs {
		items = append(items, h.buildCertificate(c, &certs[i]))
	}
	return c.JSON(http.StatusOK, util.Envelope{"certificates": items})
}

func (h *CertificateHandler) get(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid course id"))
	}
	cert, err := h.certificates.Get(c.Request().Context(), user.ID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrCertificateNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("certificate not found"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
	return c.JSON(http.StatusOK, h.buildCertificate(c, cert))
}

// uploadSignature stores the image stamped on certificates. The upload is
// normalized through the media processor so oversized scans get resized.
func (h *CertificateHandler) uploadSignature(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("signature image is required"))
	}
	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	contents, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	contentType := file.Header.Get(echo.HeaderContentType)
	if h.processor != nil {
		result, err := h.processor.Process(c.Request().Context(), media.Upload{
			Reader:      bytes.NewReader(contents),
			Size:        int64(len(contents)),
			FileName:    file.Filename,
			ContentType: contentType,
		}, 1024)
		if err != nil {
			return c.JSON(http.StatusBadRequest, util.Error("unsupported signature image"))
		}
		contents = result.Bytes
		contentType = result.ContentType
	}

	if err := h.certificates.UploadSignature(c.Request().Context(), contents, contentType); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not store signature"))
	}
	return c.JSON(http.StatusOK, util.Envelope{"success": true})
}

func (h *CertificateHandler) buildCertificate(c echo.Context, cert *domain.Certificate) util.Envelope {
	resp := util.Envelope{
		"id":          cert.ID,
		"user_id":     cert.UserID,
		"course_id":   cert.CourseID,
		"serial_code": cert.SerialCode,
		"issued_at":   cert.IssuedAt,
	}
	if url, err := h.certificates.SignatureURL(c.Request().Context(), cert); err == nil && url != "" {
		resp["signature_url"] = url
	}
	return resp
}
