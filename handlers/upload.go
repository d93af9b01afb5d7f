package handlers

import (
	"net/http"
	"time"

	"mingle/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
)

// UploadImage stores an image on Cloudinary and returns its URL. The rest of
// the API treats that URL as an opaque reference.
func (h *Handler) UploadImage(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		respondError(c, models.NewValidationError("failed to parse form data"))
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, models.NewValidationError("no image file provided"))
		return
	}
	defer file.Close()

	cld, err := cloudinary.NewFromURL(h.cloudinaryURL)
	if err != nil {
		respondError(c, models.NewStorageError(err))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "mingle/images",
		PublicID:       userID.Hex() + "_" + time.Now().Format("20060102150405"),
		Transformation: "c_limit,w_1200,h_1200,q_auto",
	})
	if err != nil {
		respondError(c, models.NewStorageError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": result.SecureURL})
}
