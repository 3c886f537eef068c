package entity

import "time"

// User 组织成员，每人只有一个角色；is_active只控制登录，不影响数据归属
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	OrgID        string    `json:"org_id" gorm:"size:32;not null;index"`
	Email        string    `json:"email" gorm:"size:200;uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"size:200;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         string    `json:"role" gorm:"size:30;not null"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// 固定角色集
const (
	RoleHeadOfDepartment = "Head of Department"
	RoleAdmin            = "Admin"
	RoleLogistics        = "Logistics"
	RoleFinance          = "Finance"
	RoleStores           = "Stores"
)

// ValidRoles 角色白名单（用户管理时校验）
var ValidRoles = []string{
	RoleHeadOfDepartment,
	RoleAdmin,
	RoleLogistics,
	RoleFinance,
	RoleStores,
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Actor 认证后的操作者上下文，由HTTP层注入，引擎调用必须显式传递
type Actor struct {
	UserID string
	OrgID  string
	Role   string
}
