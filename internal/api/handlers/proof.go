package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/harvestlink/checkoutapi/internal/domain"
	"github.com/harvestlink/checkoutapi/internal/proof"
	"github.com/harvestlink/checkoutapi/pkg/errors"
)

// maxProofImageBytes caps the uploaded image size; attempts are held in
// memory until placed or evicted, so oversized uploads are rejected before
// the body is read.
const maxProofImageBytes = 5 << 20

// HandleCreateProofAttempt accepts a captured payment-proof image and opens
// a new attempt. Scanning starts only after the explicit confirm call - the
// client previews the image first.
func HandleCreateProofAttempt(store *proof.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Slack covers the multipart framing around the file part
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxProofImageBytes+4096)

		fileHeader, err := c.FormFile("image")
		if err != nil {
			writeError(c, logger, &errors.ErrValidation{Message: "payment proof image is required"})
			return
		}
		if fileHeader.Size > maxProofImageBytes {
			writeError(c, logger, &errors.ErrValidation{Message: "payment proof image must be 5MB or smaller"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			writeError(c, logger, &errors.ErrValidation{Message: "could not read uploaded image"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(c, logger, &errors.ErrValidation{Message: "could not read uploaded image"})
			return
		}

		image := &domain.ProofImage{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Data:        data,
		}

		id, pipeline := store.Create()
		if err := pipeline.Capture(image); err != nil {
			store.Delete(id)
			writeError(c, logger, err)
			return
		}

		logger.Info("proof attempt created",
			zap.String("attempt_id", id),
			zap.String("filename", image.Filename),
			zap.Int("size", len(data)),
		)

		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"attempt_id": id,
			"state":      pipeline.State(),
		})
	}
}

// HandleScanProof confirms the captured image and runs OCR extraction.
// Extraction failures are not errors: the response flags that manual entry
// is needed and the attempt stays usable.
func HandleScanProof(store *proof.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		pipeline, err := store.Get(c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}

		result, err := pipeline.ConfirmAndScan(c.Request.Context())
		if err != nil {
			writeError(c, logger, err)
			return
		}

		resp := gin.H{
			"success":            true,
			"state":              pipeline.State(),
			"status":             result.Status,
			"needs_manual_entry": pipeline.State() == domain.ProofStateNeedsManualEntry,
		}
		if code := pipeline.ReferenceCode(); code != "" {
			resp["ref_code"] = code
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ManualReferenceRequest carries a typed reference code
type ManualReferenceRequest struct {
	ReferenceCode string `json:"reference_code" binding:"required"`
}

// HandleManualReference records a manually entered reference code
func HandleManualReference(store *proof.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ManualReferenceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, logger, &errors.ErrValidation{Message: "please enter a reference number"})
			return
		}

		pipeline, err := store.Get(c.Param("id"))
		if err != nil {
			writeError(c, logger, err)
			return
		}

		if err := pipeline.SubmitManualCode(req.ReferenceCode); err != nil {
			writeError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"state":    pipeline.State(),
			"ref_code": pipeline.ReferenceCode(),
		})
	}
}

// HandleDiscardProof resets and removes an attempt (user changed or
// cancelled the attachment)
func HandleDiscardProof(store *proof.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		store.Delete(c.Param("id"))
		c.Status(http.StatusNoContent)
	}
}
