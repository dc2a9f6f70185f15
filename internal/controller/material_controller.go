package controller

import (
	"fmt"
	"path/filepath"

	"aicourse_backend/internal/service"
	"aicourse_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// maxMaterialBytes caps uploaded source documents at 20 MiB.
const maxMaterialBytes = 20 << 20

type MaterialController struct {
	StorageService *service.StorageService
}

func NewMaterialController(storageService *service.StorageService) *MaterialController {
	return &MaterialController{StorageService: storageService}
}

// @Summary Upload source material
// @Description Stores the document and returns its extracted text for use as a course topic input
// @Tags materials
// @Accept mpfd
// @Produce json
// @Param file formData file true "source document"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/materials [post]
func (ct *MaterialController) UploadMaterial(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "file required")
		return
	}
	if header.Size > maxMaterialBytes {
		util.BadRequest(c, "file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	key := fmt.Sprintf("materials/%s%s", util.GenerateID("mat"), filepath.Ext(header.Filename))

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer file.Close()

	url, err := ct.StorageService.Provider.Upload(c.Request.Context(), key, file, header.Size, contentType)
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	extract, err := header.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer extract.Close()

	text, err := ct.StorageService.Extractor.Extract(c.Request.Context(), extract, contentType)
	if err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	util.Created(c, gin.H{
		"url":  url,
		"text": text,
	})
}
