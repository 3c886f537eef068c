package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitfantasy/potrack/internal/apperr"
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/repository"
	"github.com/redis/go-redis/v9"
)

const statsCacheTTL = 30 * time.Second

// DashboardService 看板统计，按角色可见范围聚合，redis短缓存
type DashboardService struct {
	requestRepo *repository.RequestRepository
	poRepo      *repository.PORepository
	rdb         *redis.Client
}

func NewDashboardService(repos *repository.Repositories, rdb *redis.Client) *DashboardService {
	return &DashboardService{
		requestRepo: repos.Request,
		poRepo:      repos.PO,
		rdb:         rdb,
	}
}

// Stats 角色相关的看板数据，零行时各项为0
type Stats map[string]any

// GetStats 获取看板统计。缓存读写都是尽力而为，redis故障不影响结果。
func (s *DashboardService) GetStats(ctx context.Context, actor entity.Actor) (Stats, error) {
	cacheKey := fmt.Sprintf("potrack:stats:%s:%s:%s", actor.OrgID, actor.Role, actor.UserID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return stats, nil
			}
		}
	}

	stats, err := s.computeStats(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.rdb.Set(ctx, cacheKey, payload, statsCacheTTL)
		}
	}
	return stats, nil
}

func (s *DashboardService) computeStats(ctx context.Context, actor entity.Actor) (Stats, error) {
	reqScope, ok := requestScope(actor)
	if !ok {
		return nil, apperr.Authorization("role cannot view dashboard", nil)
	}
	poFilter, _ := poScope(actor)

	reqCounts, err := s.requestRepo.CountByStatus(ctx, actor.OrgID, reqScope)
	if err != nil {
		return nil, apperr.Unexpected("failed to aggregate request stats", err)
	}
	poCounts, err := s.poRepo.CountByStatus(ctx, actor.OrgID, poFilter)
	if err != nil {
		return nil, apperr.Unexpected("failed to aggregate purchase order stats", err)
	}
	poCounts = mergePOStatusCounts(poCounts)

	stats := Stats{
		"role": actor.Role,
		"requests": Stats{
			"total":              sumCounts(reqCounts),
			"pendingAdminReview": reqCounts[string(entity.RequestStatusPendingAdminReview)],
			"adminApproved":      reqCounts[string(entity.RequestStatusAdminApproved)],
			"adminRejected":      reqCounts[string(entity.RequestStatusAdminRejected)],
			"adminHold":          reqCounts[string(entity.RequestStatusAdminHold)],
			"vendorsSubmitted":   reqCounts[string(entity.RequestStatusVendorsSubmitted)],
			"poCreated":          reqCounts[string(entity.RequestStatusPOCreated)],
		},
		"purchaseOrders": Stats{
			"total":    sumCounts(poCounts),
			"pending":  poCounts[string(entity.POStatusPending)],
			"approved": poCounts[string(entity.POStatusApproved)],
			"rejected": poCounts[string(entity.POStatusRejected)],
			"hold":     poCounts[string(entity.POStatusHold)],
		},
	}

	switch actor.Role {
	case entity.RoleAdmin:
		// 待决数 = 待审 + 搁置
		stats["pendingDecision"] = reqCounts[string(entity.RequestStatusPendingAdminReview)] +
			reqCounts[string(entity.RequestStatusAdminHold)]
		stats["awaitingSelection"] = reqCounts[string(entity.RequestStatusVendorsSubmitted)]
	case entity.RoleHeadOfDepartment:
		stats["pendingPOReviews"] = poCounts[string(entity.POStatusPending)]
	case entity.RoleLogistics:
		stats["awaitingVendorOptions"] = reqCounts[string(entity.RequestStatusAdminApproved)]
	case entity.RoleFinance:
		payment, err := s.poRepo.CountByPaymentStatus(ctx, actor.OrgID, poFilter)
		if err != nil {
			return nil, apperr.Unexpected("failed to aggregate payment stats", err)
		}
		stats["payment"] = Stats{
			"notPaid":       payment[string(entity.PaymentStatusNotPaid)],
			"partiallyPaid": payment[string(entity.PaymentStatusPartiallyPaid)],
			"paid":          payment[string(entity.PaymentStatusPaid)],
		}
	case entity.RoleStores:
		delivery, err := s.poRepo.CountByDeliveryStatus(ctx, actor.OrgID, poFilter)
		if err != nil {
			return nil, apperr.Unexpected("failed to aggregate delivery stats", err)
		}
		delivery = mergeDeliveryStatusCounts(delivery)
		stats["delivery"] = Stats{
			"notReceived":       delivery[string(entity.DeliveryStatusNotReceived)],
			"partiallyReceived": delivery[string(entity.DeliveryStatusPartiallyReceived)],
			"received":          delivery[string(entity.DeliveryStatusReceived)],
		}
	}

	total, err := s.poRepo.SumTotalAmount(ctx, actor.OrgID, poFilter)
	if err != nil {
		return nil, apperr.Unexpected("failed to aggregate total amount", err)
	}
	stats["totalAmount"] = total

	return stats, nil
}

// mergePOStatusCounts 把旧版存储值并入规范状态计数
func mergePOStatusCounts(counts map[string]int64) map[string]int64 {
	merged := make(map[string]int64, len(counts))
	for value, n := range counts {
		merged[string(entity.NormalizePOStatus(value))] += n
	}
	return merged
}

// mergeDeliveryStatusCounts 同上，收货状态
func mergeDeliveryStatusCounts(counts map[string]int64) map[string]int64 {
	merged := make(map[string]int64, len(counts))
	for value, n := range counts {
		merged[string(entity.NormalizeDeliveryStatus(value))] += n
	}
	return merged
}

func sumCounts(counts map[string]int64) int64 {
	var total int64
	for _, n := range counts {
		total += n
	}
	return total
}
