package entity

// Operation 引擎操作，每个操作只允许一个角色执行
type Operation string

const (
	OpCreateRequest       Operation = "create_request"
	OpAdminReview         Operation = "admin_review"
	OpSubmitVendorOptions Operation = "submit_vendor_options"
	OpSelectVendor        Operation = "select_vendor"
	OpCreatePO            Operation = "create_po"
	OpReviewPO            Operation = "review_po"
	OpUpdatePayment       Operation = "update_payment"
	OpUpdateDelivery      Operation = "update_delivery"
	OpManageUsers         Operation = "manage_users"
)

// operationRoles 静态授权表，替代散落的角色判断
var operationRoles = map[Operation]string{
	OpCreateRequest:       RoleHeadOfDepartment,
	OpAdminReview:         RoleAdmin,
	OpSubmitVendorOptions: RoleLogistics,
	OpSelectVendor:        RoleAdmin,
	OpCreatePO:            RoleLogistics,
	OpReviewPO:            RoleHeadOfDepartment,
	OpUpdatePayment:       RoleFinance,
	OpUpdateDelivery:      RoleStores,
	OpManageUsers:         RoleAdmin,
}

// CanPerform 角色是否允许执行操作
func CanPerform(role string, op Operation) bool {
	allowed, ok := operationRoles[op]
	return ok && allowed == role
}

// RoleFor 操作对应的角色，未注册的操作返回空串
func RoleFor(op Operation) string {
	return operationRoles[op]
}
