package service

import (
	"github.com/bitfantasy/potrack/internal/entity"
	"github.com/bitfantasy/potrack/internal/repository"
)

// requestScope 角色对申请的可见范围（组织内再过滤）
func requestScope(actor entity.Actor) (repository.RequestFilter, bool) {
	switch actor.Role {
	case entity.RoleAdmin:
		return repository.RequestFilter{}, true
	case entity.RoleHeadOfDepartment:
		return repository.RequestFilter{RequestedBy: actor.UserID}, true
	case entity.RoleLogistics:
		return repository.RequestFilter{StatusIn: []string{
			string(entity.RequestStatusAdminApproved),
			string(entity.RequestStatusVendorsSubmitted),
			string(entity.RequestStatusPOCreated),
		}}, true
	case entity.RoleFinance, entity.RoleStores:
		return repository.RequestFilter{StatusIn: []string{
			string(entity.RequestStatusPOCreated),
		}}, true
	}
	return repository.RequestFilter{}, false
}

// poScope 角色对订单的可见范围
func poScope(actor entity.Actor) (repository.POFilter, bool) {
	switch actor.Role {
	case entity.RoleAdmin, entity.RoleHeadOfDepartment:
		return repository.POFilter{}, true
	case entity.RoleLogistics:
		return repository.POFilter{LogisticsUserID: actor.UserID}, true
	case entity.RoleFinance, entity.RoleStores:
		return repository.POFilter{StatusIn: entity.POStatusQueryValues(entity.POStatusApproved)}, true
	}
	return repository.POFilter{}, false
}

// requestVisible 已加载的申请是否在角色可见范围内
func requestVisible(actor entity.Actor, req *entity.ProcurementRequest) bool {
	scope, ok := requestScope(actor)
	if !ok {
		return false
	}
	if scope.RequestedBy != "" && req.RequestedBy != scope.RequestedBy {
		return false
	}
	if len(scope.StatusIn) > 0 {
		found := false
		for _, s := range scope.StatusIn {
			if string(req.Status) == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// poVisible 已加载的订单是否在角色可见范围内。
// submittedByActor：订单源申请的报价是否由当前物流提交（仅物流角色相关）。
func poVisible(actor entity.Actor, po *entity.PurchaseOrder, submittedByActor bool) bool {
	switch actor.Role {
	case entity.RoleAdmin, entity.RoleHeadOfDepartment:
		return true
	case entity.RoleLogistics:
		return po.CreatedBy == actor.UserID || submittedByActor
	case entity.RoleFinance, entity.RoleStores:
		return entity.NormalizePOStatus(string(po.Status)) == entity.POStatusApproved
	}
	return false
}
