package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"github.com/wyfcoding/loanapplication/pkg/middleware"
)

const (
	pathUserByEmail = "/api/v1/users/email/{email}"
	pathUsersBatch  = "/api/v1/users/batch"
)

// Config 身份服务客户端配置
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	BreakerFailures    uint32
	BreakerOpenTimeout time.Duration
}

// UserClient 身份服务 HTTP 客户端，调用方 token 原样转发
type UserClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

type batchRequest struct {
	IDs []int64 `json:"ids"`
}

// NewUserClient 创建客户端；仅 5xx 与网络错误计入熔断
func NewUserClient(cfg Config) *UserClient {
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	failures := cfg.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "user-service",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || domain.KindOf(err) != domain.KindUpstream
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &UserClient{http: httpClient, breaker: breaker}
}

// FindByEmail 按邮箱查询用户
func (c *UserClient) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		var profile domain.UserProfile
		resp, err := c.request(ctx).
			SetPathParam("email", email).
			SetResult(&profile).
			Get(pathUserByEmail)
		if err := classify(resp, err, "user not found: "+email); err != nil {
			return nil, err
		}
		return profile, nil
	})
	if err != nil {
		return domain.UserProfile{}, domain.Upstream("user service lookup by email failed", err)
	}
	return out.(domain.UserProfile), nil
}

// FindByIDs 批量查询用户；返回集合可能少于请求的 ID，404 视为无匹配用户
func (c *UserClient) FindByIDs(ctx context.Context, ids []int64) ([]domain.UserProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out, err := c.breaker.Execute(func() (any, error) {
		var profiles []domain.UserProfile
		resp, err := c.request(ctx).
			SetBody(batchRequest{IDs: ids}).
			SetResult(&profiles).
			Post(pathUsersBatch)
		if err == nil && resp.StatusCode() == http.StatusNotFound {
			return []domain.UserProfile{}, nil
		}
		if err := classify(resp, err, "users not found"); err != nil {
			return nil, err
		}
		return profiles, nil
	})
	if err != nil {
		return nil, domain.Upstream("user service batch lookup failed", err)
	}
	return out.([]domain.UserProfile), nil
}

func (c *UserClient) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token, ok := middleware.BearerTokenFrom(ctx); ok {
		req.SetAuthToken(token)
	}
	return req
}

// classify 将响应状态映射为领域错误
func classify(resp *resty.Response, err error, notFound string) error {
	if err != nil {
		return fmt.Errorf("user service request: %w", err)
	}
	status := resp.StatusCode()
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized:
		return domain.Unauthorized("not authorized by user service")
	case status == http.StatusForbidden:
		return domain.Forbidden("forbidden by user service")
	case status == http.StatusNotFound:
		return domain.NotFound("%s", notFound)
	case status < http.StatusInternalServerError:
		body := strings.TrimSpace(resp.String())
		if body == "" {
			body = "invalid request to user service"
		}
		return domain.BadRequest("%s", body)
	default:
		return fmt.Errorf("user service returned %d: %s", status, strings.TrimSpace(resp.String()))
	}
}
