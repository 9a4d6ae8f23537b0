package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/docprep/internal/models"
	"github.com/feichai0017/docprep/internal/service/casepkg"
	"github.com/feichai0017/docprep/internal/settings"
	"github.com/feichai0017/docprep/pkg/errs"
	"github.com/feichai0017/docprep/pkg/logger"
)

type PackageHandler struct {
	service  casepkg.PackageService
	settings *settings.Store
	logger   logger.Logger
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// packageRequest is the body of the three pipeline endpoints. Folder
// overrides the stored working directory for this invocation only.
type packageRequest struct {
	Folder   string `json:"folder"`
	BankName string `json:"bankName"`
}

func NewPackageHandler(service casepkg.PackageService, store *settings.Store, logger logger.Logger) *PackageHandler {
	return &PackageHandler{
		service:  service,
		settings: store,
		logger:   logger,
	}
}

// resolveFolder picks the working folder: explicit request value first,
// then the stored working directory.
func (h *PackageHandler) resolveFolder(req packageRequest) string {
	if req.Folder != "" {
		return req.Folder
	}
	return h.settings.WorkDirectory()
}

// pipelineConfig assembles the per-invocation configuration from the
// settings store plus the request body.
func (h *PackageHandler) pipelineConfig(req packageRequest) models.PipelineConfig {
	cfg := models.PipelineConfig{
		ArbiterNaming:     models.ArbiterNaming(h.settings.String(settings.KeyArbiterNaming)),
		MergeObligations:  h.settings.Bool(settings.KeyMergeObligations),
		InsertSignature:   h.settings.Bool(settings.KeyInsertSignature),
		SaveBaseStatement: h.settings.Bool(settings.KeySaveBaseStatement),
		BankName:          req.BankName,
	}
	if cfg.ArbiterNaming == "" {
		cfg.ArbiterNaming = models.NamingCaseDebtor
	}
	return cfg
}

// FormPackage 运行完整的案卷组包流程
func (h *PackageHandler) FormPackage(c *gin.Context) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	folder := h.resolveFolder(req)
	if folder == "" {
		h.handleError(c, http.StatusBadRequest, "Working folder is not set", nil)
		return
	}

	result, err := h.service.FormPackage(c.Request.Context(), folder, h.pipelineConfig(req))
	if err != nil {
		h.handlePipelineError(c, "Failed to form package", result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InsertStatement 将迟到的声明文档插入已解包的案卷
func (h *PackageHandler) InsertStatement(c *gin.Context) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	folder := h.resolveFolder(req)
	if folder == "" {
		h.handleError(c, http.StatusBadRequest, "Working folder is not set", nil)
		return
	}

	result, err := h.service.InsertStatement(c.Request.Context(), folder, h.pipelineConfig(req))
	if err != nil {
		h.handlePipelineError(c, "Failed to insert statement", result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UnpackNoStatement 在没有声明文档的情况下解包案卷
func (h *PackageHandler) UnpackNoStatement(c *gin.Context) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	folder := h.resolveFolder(req)
	if folder == "" {
		h.handleError(c, http.StatusBadRequest, "Working folder is not set", nil)
		return
	}

	result, err := h.service.UnpackNoStatement(c.Request.Context(), folder)
	if err != nil {
		h.handlePipelineError(c, "Failed to unpack dossier", result, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// publicationRequest is the body of the publication cross-check endpoint.
type publicationRequest struct {
	Folder  string `json:"folder"`
	PDFPath string `json:"pdfPath" binding:"required"`
}

// CheckPublication 核对官方公告 PDF 中的字段
func (h *PackageHandler) CheckPublication(c *gin.Context) {
	var req publicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	folder := h.resolveFolder(packageRequest{Folder: req.Folder})
	if folder == "" {
		h.handleError(c, http.StatusBadRequest, "Working folder is not set", nil)
		return
	}

	results, err := h.service.CheckPublication(c.Request.Context(), folder, req.PDFPath)
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to check publication", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": results})
}

// Banks 列出银行名称
func (h *PackageHandler) Banks(c *gin.Context) {
	banks, err := h.service.Banks()
	if err != nil {
		h.handleError(c, statusFor(err), "Failed to list banks", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

// GetSettings 返回当前设置
func (h *PackageHandler) GetSettings(c *gin.Context) {
	values, err := h.settings.All()
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to read settings", err)
		return
	}

	c.JSON(http.StatusOK, values)
}

// UpdateSettings 更新设置中的若干键
func (h *PackageHandler) UpdateSettings(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		h.handleError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for key, value := range values {
		if err := h.settings.Set(key, value); err != nil {
			h.handleError(c, http.StatusInternalServerError, "Failed to save settings", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

// handlePipelineError returns the partial result alongside the error so
// the client can show which reorganization step failed.
func (h *PackageHandler) handlePipelineError(c *gin.Context, message string, result *models.PackageResult, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	body := gin.H{
		"message": message,
		"error":   err.Error(),
	}
	if result != nil {
		body["result"] = result
	}

	c.JSON(statusFor(err), body)
}

// handleError 统一错误处理
func (h *PackageHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}

// statusFor maps pipeline error kinds onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrAmbiguousMatch), errors.Is(err, errs.ErrDimensionMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
