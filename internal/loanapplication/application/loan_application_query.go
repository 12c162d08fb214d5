package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// LoanApplicationQueryService 按状态分页查询并补充用户信息
type LoanApplicationQueryService struct {
	apps   domain.LoanApplicationRepository
	states domain.StateRepository
	users  domain.UserProfileClient
}

// NewLoanApplicationQueryService 创建查询服务
func NewLoanApplicationQueryService(
	apps domain.LoanApplicationRepository,
	states domain.StateRepository,
	users domain.UserProfileClient,
) *LoanApplicationQueryService {
	return &LoanApplicationQueryService{apps: apps, states: states, users: users}
}

// List 至少需要一个状态；未知状态一次性全部报告
func (s *LoanApplicationQueryService) List(ctx context.Context, q ListLoanApplicationsQuery) (domain.PageResult[domain.LoanApplication], error) {
	var empty domain.PageResult[domain.LoanApplication]
	defer logger.LogDuration(ctx, "list loan applications", "page", q.Page, "size", q.Size)()

	states := distinctStates(q.States)
	if len(states) == 0 {
		return empty, domain.NotFound("at least one state must be provided")
	}
	if q.Page < 0 {
		return empty, domain.BadRequest("page must not be negative")
	}
	if q.Size < 1 {
		return empty, domain.BadRequest("size must be at least 1")
	}

	if err := s.checkStates(ctx, states); err != nil {
		return empty, err
	}

	total, err := s.apps.CountByStatuses(ctx, states)
	if err != nil {
		return empty, domain.Upstream("count applications", err)
	}
	items, err := s.apps.FindByStatuses(ctx, states, q.Page, q.Size)
	if err != nil {
		return empty, domain.Upstream("find applications", err)
	}

	enriched, err := s.enrich(ctx, items)
	if err != nil {
		return empty, err
	}

	return domain.PageResult[domain.LoanApplication]{
		Content:       enriched,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
	}, nil
}

// checkStates 并发校验状态是否存在
func (s *LoanApplicationQueryService) checkStates(ctx context.Context, states []string) error {
	found := make([]bool, len(states))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range states {
		g.Go(func() error {
			ok, err := s.states.ExistsByName(gctx, name)
			if err != nil {
				return err
			}
			found[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Upstream("check states", err)
	}

	var unknown []string
	for i, ok := range found {
		if !ok {
			unknown = append(unknown, states[i])
		}
	}
	if len(unknown) > 0 {
		return domain.NotFound("unknown states: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// enrich 批量拉取用户信息，合并基本工资与姓名；未匹配的记录保持不变
func (s *LoanApplicationQueryService) enrich(ctx context.Context, items []domain.LoanApplication) ([]domain.LoanApplication, error) {
	seen := make(map[int64]struct{}, len(items))
	var ids []int64
	for _, item := range items {
		if item.UserID == 0 {
			continue
		}
		if _, ok := seen[item.UserID]; ok {
			continue
		}
		seen[item.UserID] = struct{}{}
		ids = append(ids, item.UserID)
	}
	if len(ids) == 0 {
		return items, nil
	}

	profiles, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Upstream("find user profiles", err)
	}
	byID := make(map[int64]domain.UserProfile, len(profiles))
	for _, p := range profiles {
		if _, dup := byID[p.UserID]; !dup {
			byID[p.UserID] = p
		}
	}

	var missing []int64
	out := make([]domain.LoanApplication, len(items))
	for i, item := range items {
		p, ok := byID[item.UserID]
		if !ok {
			if item.UserID != 0 {
				missing = append(missing, item.UserID)
			}
			out[i] = item
			continue
		}
		out[i] = item.WithProfile(p)
	}
	if len(missing) > 0 {
		logger.Warn(ctx, "user profiles not found during enrichment", "user_ids", missing)
	}
	return out, nil
}

// distinctStates 去除空白与重复，保持输入顺序
func distinctStates(states []string) []string {
	seen := make(map[string]struct{}, len(states))
	out := make([]string, 0, len(states))
	for _, s := range states {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
