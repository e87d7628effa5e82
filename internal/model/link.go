package model

import "fmt"

// CounterpartyKind 任务可关联的对象类型
type CounterpartyKind string

const (
	KindContact          CounterpartyKind = "contact"
	KindInstitution      CounterpartyKind = "institution"
	KindFund             CounterpartyKind = "fund"
	KindShareholder      CounterpartyKind = "shareholder"
	KindShareholderGroup CounterpartyKind = "shareholderGroup"
	KindExternalContact  CounterpartyKind = "externalContact" // 目录服务中的联系人（未导入）
	KindExecutor         CounterpartyKind = "executor"
)

// ParseCounterpartyKind 解析路由/请求中的类型名
func ParseCounterpartyKind(s string) (CounterpartyKind, error) {
	switch k := CounterpartyKind(s); k {
	case KindContact, KindInstitution, KindFund, KindShareholder, KindShareholderGroup, KindExternalContact, KindExecutor:
		return k, nil
	}
	return "", fmt.Errorf("unknown counterparty kind %q", s)
}

// TaskContact 任务-本地联系人
type TaskContact struct {
	TaskID    string `gorm:"column:task_id;primaryKey;type:varchar(36)"`
	ContactID string `gorm:"column:contact_id;primaryKey;type:varchar(36);index"`
}

func (TaskContact) TableName() string { return "task_contacts" }

// TaskInstitution 任务-机构（每个任务至多一条）
type TaskInstitution struct {
	TaskID        string `gorm:"column:task_id;primaryKey;type:varchar(36)" json:"task_id"`
	InstitutionID string `gorm:"column:institution_id;primaryKey;type:varchar(64);index" json:"institution_id"`
	Name          string `gorm:"column:name;type:varchar(256)" json:"name"`
}

func (TaskInstitution) TableName() string { return "task_institutions" }

// TaskFund 任务-基金
type TaskFund struct {
	TaskID string `gorm:"column:task_id;primaryKey;type:varchar(36)" json:"task_id"`
	FundID string `gorm:"column:fund_id;primaryKey;type:varchar(64);index" json:"fund_id"`
	Name   string `gorm:"column:name;type:varchar(256)" json:"name"`
}

func (TaskFund) TableName() string { return "task_funds" }

// TaskShareholder 任务-股东/股东组，ShareholderID 与 ShareholderGroupID 二选一
// 股东组行每个任务至多一条
type TaskShareholder struct {
	ID                 string  `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	TaskID             string  `gorm:"column:task_id;type:varchar(36);not null;index" json:"task_id"`
	ShareholderID      *string `gorm:"column:shareholder_id;type:varchar(64);index" json:"shareholder_id"`
	ShareholderGroupID *string `gorm:"column:shareholder_group_id;type:varchar(64);index" json:"shareholder_group_id"`
	Name               string  `gorm:"column:name;type:varchar(256)" json:"name"`
}

func (TaskShareholder) TableName() string { return "task_shareholders" }

// TaskExternalContact 任务-目录服务联系人（按外部ID关联，不要求已导入）
type TaskExternalContact struct {
	TaskID            string `gorm:"column:task_id;primaryKey;type:varchar(36)" json:"task_id"`
	ExternalContactID string `gorm:"column:external_contact_id;primaryKey;type:varchar(64);index" json:"external_contact_id"`
	Name              string `gorm:"column:name;type:varchar(256)" json:"name"`
}

func (TaskExternalContact) TableName() string { return "task_external_contacts" }
