package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/application"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/middleware"
	"github.com/wyfcoding/loanapplication/pkg/response"
)

const (
	defaultPage = 0
	defaultSize = 20
)

// LoanApplicationService 处理器依赖的应用服务
type LoanApplicationService interface {
	Create(ctx context.Context, cmd application.CreateLoanApplicationCommand) (domain.LoanApplication, error)
	Update(ctx context.Context, cmd application.UpdateLoanApplicationCommand) (domain.LoanApplication, error)
	List(ctx context.Context, q application.ListLoanApplicationsQuery) (domain.PageResult[domain.LoanApplication], error)
}

// LoanApplicationHandler 贷款申请 HTTP 处理器
type LoanApplicationHandler struct {
	svc          LoanApplicationService
	auth         *middleware.Authenticator
	submitGuards []gin.HandlerFunc
}

// NewLoanApplicationHandler 创建处理器
func NewLoanApplicationHandler(svc LoanApplicationService, auth *middleware.Authenticator, submitGuards ...gin.HandlerFunc) *LoanApplicationHandler {
	return &LoanApplicationHandler{svc: svc, auth: auth, submitGuards: submitGuards}
}

// submitChain 提交接口：认证后经过提交限流再进入处理
func (h *LoanApplicationHandler) submitChain() []gin.HandlerFunc {
	chain := []gin.HandlerFunc{h.auth.Require(middleware.RoleClient)}
	chain = append(chain, h.submitGuards...)
	return append(chain, h.Create)
}

// RegisterRoutes 注册路由
func (h *LoanApplicationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/loan-applications")
	{
		api.POST("", h.submitChain()...)                              // 客户提交申请
		api.PUT("", h.auth.Require(middleware.RoleAdvisor), h.Update) // 顾问审批
		api.GET("", h.auth.Require(middleware.RoleAdvisor), h.List)   // 按状态分页
	}
}

// CreateRequest 创建申请请求
type CreateRequest struct {
	Email          string          `json:"email" binding:"required,email"`
	Amount         decimal.Decimal `json:"amount"`
	LoanTermMonths int             `json:"loanTermMonths" binding:"required,min=1,max=120"`
	LoanType       string          `json:"loanType" binding:"required"`
}

// UpdateRequest 更新状态请求
type UpdateRequest struct {
	ID           int64  `json:"loanApplicationId" binding:"required,gt=0"`
	Email        string `json:"email" binding:"required,email"`
	Status       string `json:"status" binding:"required"`
	Observations string `json:"observations"`
}

// PageResponse 分页响应
type PageResponse struct {
	Content       []domain.LoanApplication `json:"content"`
	Page          int                      `json:"page"`
	Size          int                      `json:"size"`
	TotalElements int64                    `json:"totalElements"`
	TotalPages    int64                    `json:"totalPages"`
}

// Create 创建贷款申请；调用方身份须与申请邮箱一致
func (h *LoanApplicationHandler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), domain.CodeBadRequest)
		return
	}

	if identity, ok := middleware.IdentityFrom(c); ok && !strings.EqualFold(identity.Subject, req.Email) {
		writeError(c, domain.Unauthorized("the authenticated user does not match the application email"))
		return
	}

	app, err := h.svc.Create(c.Request.Context(), application.CreateLoanApplicationCommand{
		Email:          strings.TrimSpace(req.Email),
		Amount:         req.Amount,
		LoanTermMonths: req.LoanTermMonths,
		LoanType:       strings.TrimSpace(req.LoanType),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Location", "/api/v1/loan-applications/"+strconv.FormatInt(app.ID, 10))
	response.SuccessWithStatus(c, http.StatusCreated, app)
}

// Update 更新申请状态
func (h *LoanApplicationHandler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), domain.CodeBadRequest)
		return
	}

	app, err := h.svc.Update(c.Request.Context(), application.UpdateLoanApplicationCommand{
		ID:           req.ID,
		Email:        strings.TrimSpace(req.Email),
		Status:       normalizeStatus(req.Status),
		Observations: req.Observations,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, app)
}

// List 按状态分页查询，status 可重复或以逗号分隔
func (h *LoanApplicationHandler) List(c *gin.Context) {
	page, err := intQuery(c, "page", defaultPage)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "page must be an integer", domain.CodeBadRequest)
		return
	}
	size, err := intQuery(c, "size", defaultSize)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "size must be an integer", domain.CodeBadRequest)
		return
	}

	var states []string
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = string(normalizeStatus(s)); s != "" {
				states = append(states, s)
			}
		}
	}

	result, err := h.svc.List(c.Request.Context(), application.ListLoanApplicationsQuery{
		Page:   page,
		Size:   size,
		States: states,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, PageResponse{
		Content:       result.Content,
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages(),
	})
}

func normalizeStatus(s string) domain.Status {
	return domain.Status(strings.ToUpper(strings.TrimSpace(s)))
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// StatusOf 错误分类到 HTTP 状态码
func StatusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status := StatusOf(kind)

	message := err.Error()
	if kind == domain.KindUpstream {
		logger.Error(c.Request.Context(), "loan application request failed", "path", c.FullPath(), "error", err)
		message = "internal server error"
	} else {
		logger.Warn(c.Request.Context(), "loan application request rejected", "path", c.FullPath(), "code", domain.CodeOf(err), "error", err)
	}
	response.ErrorWithStatus(c, status, message, domain.CodeOf(err))
}
