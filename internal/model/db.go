package model

import "time"

// User 公司用户（任务执行人/创建人）
type User struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36);comment:用户ID" json:"id"`
	CompanyID string    `gorm:"column:company_id;type:varchar(36);index;comment:所属公司" json:"-"`
	Name      string    `gorm:"column:name;type:varchar(256);not null;comment:姓名" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(256);comment:邮箱" json:"email,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"-"`
}

func (User) TableName() string { return "users" }

// AllModels 需要迁移的表（按依赖顺序）
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&TaskType{},
		&TaskSubtype{},
		&Task{},
		&TaskExecutor{},
		&TaskFollowUp{},
		&TaskContact{},
		&TaskInstitution{},
		&TaskFund{},
		&TaskShareholder{},
		&TaskExternalContact{},
		&Contact{},
		&ContactBranch{},
		&ContactCountry{},
		&ContactEducation{},
		&ContactSector{},
		&ContactJobFunction{},
		&ContactPhoneNumber{},
	}
}
