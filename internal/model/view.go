package model

import "time"

// TaskHeader 任务详情头部（含内部类型名称）
type TaskHeader struct {
	TaskID          string     `gorm:"column:task_id" json:"task_id"`
	CompanyID       string     `gorm:"column:company_id" json:"company_id"`
	Title           string     `gorm:"column:task_title" json:"task_title"`
	Type            string     `gorm:"column:task_type" json:"task_type"`
	Subtype         string     `gorm:"column:task_subtype" json:"task_subtype"`
	Description     string     `gorm:"column:task_description" json:"task_description"`
	Due             time.Time  `gorm:"column:task_due" json:"task_due"`
	StartDate       *time.Time `gorm:"column:task_start_date" json:"task_start_date"`
	Origin          string     `gorm:"column:task_origin" json:"task_origin"`
	CreatedBy       string     `gorm:"column:created_by" json:"created_by"`
	TaskTypeID      *string    `gorm:"column:mz_task_type_id" json:"mz_task_type_id"`
	TaskTypeName    *string    `gorm:"column:mz_task_type_name" json:"mz_task_type_name"`
	TaskSubtypeID   *string    `gorm:"column:mz_task_subtype_id" json:"mz_task_subtype_id"`
	TaskSubtypeName *string    `gorm:"column:mz_task_subtype_name" json:"mz_task_subtype_name"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

// ExecutorRef 执行人（id + 姓名）
type ExecutorRef struct {
	ID   string `gorm:"column:id" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}

// ContactRef 任务详情中的联系人摘要
type ContactRef struct {
	ID     string `gorm:"column:id" json:"id"`
	Name   string `gorm:"column:name" json:"name"`
	Email1 string `gorm:"column:email_1" json:"email_1"`
}

// TaskDetail 任务聚合视图，在同一快照内读取
type TaskDetail struct {
	Task                 TaskHeader            `json:"task"`
	Executors            []ExecutorRef         `json:"executors"`
	Contacts             []ContactRef          `json:"contacts"`
	Funds                []TaskFund            `json:"funds"`
	Institutions         []TaskInstitution     `json:"institutions"`
	FollowUps            []TaskFollowUp        `json:"followups"`
	ExternalContacts     []TaskExternalContact `json:"externalContacts"`
	ShareholderAndGroups []TaskShareholder     `json:"shareholderAndGroups"`
}

// TaskListItem 列表行：任务基础字段 + 计数 + 名称汇总
type TaskListItem struct {
	TaskID               string     `json:"task_id"`
	Title                string     `json:"task_title"`
	Type                 string     `json:"task_type"`
	Subtype              string     `json:"task_subtype"`
	Description          string     `json:"task_description"`
	Due                  time.Time  `json:"task_due"`
	StartDate            *time.Time `json:"task_start_date"`
	Origin               string     `json:"task_origin"`
	TaskTypeName         *string    `json:"mz_task_type_name"`
	ExternalContactCount int        `json:"count_external_contacts"`
	ShareholderCount     int        `json:"count_shareholders"`
	ContactCount         int        `json:"count_contacts"`
	ExecutorNames        []string   `json:"executors"`
	ExternalContactNames []string   `json:"external_contacts"`
	ShareholderNames     []string   `json:"task_shareholders"`
}

// TaskListPage 分页结果
type TaskListPage struct {
	Items      []TaskListItem `json:"items"`
	Total      int64          `json:"total"`
	PageNumber int            `json:"pageNumber"`
	PerPage    int            `json:"perPage"`
}

// AnalyticsRow 分组统计结果行（bucket 为时间段，series 为执行人/类型）
type AnalyticsRow struct {
	Bucket string `gorm:"column:bucket_key"`
	Series string `gorm:"column:series_key"`
	Total  int64  `gorm:"column:task_total"`
}

// AnalyticsTotal 不分时间段的汇总
type AnalyticsTotal struct {
	Name  string `gorm:"column:series_key" json:"name"`
	Total int64  `gorm:"column:task_total" json:"task_total"`
}
