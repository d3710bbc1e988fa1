package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/billerpro/billerpro/constants"
	"github.com/billerpro/billerpro/internal/capture"
	"github.com/billerpro/billerpro/internal/common"
)

func (s *Server) handleCaptureState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stage": s.session.Stage(),
		"draft": s.session.Draft(),
	})
}

// handleCaptureUpload accepts the multipart "file" part and runs the capture
// pipeline to completion (Review, Duplicate, or a reported failure).
func (s *Server) handleCaptureUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, common.ValidationError("attach a bill file under the \"file\" field"))
		return
	}
	if header.Size > constants.MaxUploadBytes {
		s.respondError(c, common.ValidationError("bills larger than 20 MB are not supported"))
		return
	}

	f, err := header.Open()
	if err != nil {
		s.respondError(c, common.WrapError(err, "open upload"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, constants.MaxUploadBytes+1))
	if err != nil {
		s.respondError(c, common.WrapError(err, "read upload"))
		return
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" || mime == "application/octet-stream" {
		mime = mimeFromName(header.Filename)
	}

	outcome, err := s.session.HandleFile(c.Request.Context(), header.Filename, mime, data)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleCaptureConfirm(c *gin.Context) {
	var input capture.SaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		s.respondError(c, common.ValidationError("invalid save payload"))
		return
	}
	bill, err := s.session.Save(input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) handleCaptureRescan(c *gin.Context) {
	outcome, err := s.session.ScanAnyway(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleCaptureBack(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Back())
}

func (s *Server) handleCaptureDiscard(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Discard())
}

// mimeFromName is the fallback when the browser omits the part content type.
func mimeFromName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
