package redis

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/loanapplication/internal/loanapplication/domain"
	"github.com/wyfcoding/loanapplication/pkg/cache"
	"github.com/wyfcoding/loanapplication/pkg/logger"
)

// jsonCache 缓存读写能力
type jsonCache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedLoanTypeRepository 贷款类型读穿透缓存；缓存故障时回源，不影响主流程
type CachedLoanTypeRepository struct {
	next   domain.LoanTypeRepository
	cache  jsonCache
	prefix string
	ttl    time.Duration
}

// NewCachedLoanTypeRepository 装饰底层仓储
func NewCachedLoanTypeRepository(next domain.LoanTypeRepository, c jsonCache, ttl time.Duration) *CachedLoanTypeRepository {
	return &CachedLoanTypeRepository{
		next:   next,
		cache:  c,
		prefix: "loanapplication:loan_type:",
		ttl:    ttl,
	}
}

func (r *CachedLoanTypeRepository) ExistsByName(ctx context.Context, code string) (bool, error) {
	lt, err := r.FindByName(ctx, code)
	if err != nil {
		return false, err
	}
	return lt != nil, nil
}

func (r *CachedLoanTypeRepository) FindByName(ctx context.Context, code string) (*domain.LoanType, error) {
	key := r.prefix + code

	var cached domain.LoanType
	err := r.cache.GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		return &cached, nil
	case !errors.Is(err, cache.ErrMiss):
		logger.Warn(ctx, "loan type cache read failed", "code", code, "error", err)
	}

	lt, err := r.next.FindByName(ctx, code)
	if err != nil || lt == nil {
		return lt, err
	}

	if err := r.cache.SetJSON(ctx, key, lt, r.ttl); err != nil {
		logger.Warn(ctx, "loan type cache write failed", "code", code, "error", err)
	}
	return lt, nil
}

// Evict 删除缓存项
func (r *CachedLoanTypeRepository) Evict(ctx context.Context, code string) error {
	return r.cache.Delete(ctx, r.prefix+code)
}
