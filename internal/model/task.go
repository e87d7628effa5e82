package model

import "time"

// Task 外联任务（公司维度）
type Task struct {
	TaskID        string     `gorm:"column:task_id;primaryKey;type:varchar(36)" json:"task_id"`
	CompanyID     string     `gorm:"column:company_id;type:varchar(36);not null;index:idx_task_company_due,priority:1" json:"company_id"`
	Title         string     `gorm:"column:task_title;type:varchar(256)" json:"task_title"`
	Type          string     `gorm:"column:task_type;type:varchar(64)" json:"task_type"`       // 自由填写的类型
	Subtype       string     `gorm:"column:task_subtype;type:varchar(64)" json:"task_subtype"` // 自由填写的子类型
	TaskTypeID    *string    `gorm:"column:task_type_id;type:varchar(36);index" json:"task_type_id"`
	TaskSubtypeID *string    `gorm:"column:task_subtype_id;type:varchar(36)" json:"task_subtype_id"`
	Description   string     `gorm:"column:task_description;type:text" json:"task_description"`
	Due           time.Time  `gorm:"column:task_due;type:timestamp;not null;index:idx_task_company_due,priority:2" json:"task_due"`
	StartDate     *time.Time `gorm:"column:task_start_date;type:timestamp" json:"task_start_date"`
	Origin        string     `gorm:"column:task_origin;type:varchar(64)" json:"task_origin"`
	CreatedBy     string     `gorm:"column:created_by;type:varchar(36)" json:"created_by"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

// TaskType 内部任务类型（按类型统计时使用）
type TaskType struct {
	TaskTypeID string    `gorm:"column:task_type_id;primaryKey;type:varchar(36)" json:"task_type_id"`
	CompanyID  string    `gorm:"column:company_id;type:varchar(36);not null;index" json:"company_id"`
	Name       string    `gorm:"column:task_type_name;type:varchar(128);not null" json:"task_type_name"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (TaskType) TableName() string { return "task_types" }

// TaskSubtype 内部任务子类型
type TaskSubtype struct {
	TaskSubtypeID string    `gorm:"column:task_subtype_id;primaryKey;type:varchar(36)" json:"task_subtype_id"`
	TaskTypeID    string    `gorm:"column:task_type_id;type:varchar(36);not null;index" json:"task_type_id"`
	Name          string    `gorm:"column:task_subtype_name;type:varchar(128);not null" json:"task_subtype_name"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
}

func (TaskSubtype) TableName() string { return "task_subtypes" }

// TaskExecutor 任务执行人
type TaskExecutor struct {
	TaskID     string `gorm:"column:task_id;primaryKey;type:varchar(36)"`
	ExecutorID string `gorm:"column:executor_id;primaryKey;type:varchar(36)"`
}

func (TaskExecutor) TableName() string { return "task_executors" }

// TaskFollowUp 任务跟进记录
type TaskFollowUp struct {
	FollowUpID     string    `gorm:"column:followup_id;primaryKey;type:varchar(36)" json:"followup_id"`
	TaskID         string    `gorm:"column:task_id;type:varchar(36);not null;index" json:"task_id"`
	CreatedBy      string    `gorm:"column:created_by;type:varchar(36)" json:"created_by"`
	Annotation     string    `gorm:"column:annotation;type:text" json:"annotation"`
	AnnotationDate time.Time `gorm:"column:annotation_date;type:timestamp" json:"annotation_date"`
	AttachmentName *string   `gorm:"column:attachment_name;type:varchar(256)" json:"attachment_name"`
	AttachmentURL  *string   `gorm:"column:attachment_url;type:varchar(512)" json:"attachment_url"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TaskFollowUp) TableName() string { return "task_followups" }
