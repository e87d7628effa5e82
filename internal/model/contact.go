package model

import (
	"time"

	"gorm.io/datatypes"
)

// Contact 公司维度的联系人，本地录入或从目录服务导入
// (company_id, external_contact_id) 唯一，保证同一外部联系人只导入一次
type Contact struct {
	ID                 string         `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	CompanyID          string         `gorm:"column:company_id;type:varchar(36);not null;uniqueIndex:uk_contact_company_external,priority:1" json:"company_id"`
	ExternalContactID  *string        `gorm:"column:external_contact_id;type:varchar(64);uniqueIndex:uk_contact_company_external,priority:2" json:"external_contact_id"`
	ExternalInvestorID *string        `gorm:"column:external_investor_id;type:varchar(64)" json:"external_investor_id"`
	Name               string         `gorm:"column:name;type:varchar(256)" json:"name"`
	Biography          string         `gorm:"column:biography;type:text" json:"biography"`
	Email1             string         `gorm:"column:email_1;type:varchar(256)" json:"email_1"`
	Email2             string         `gorm:"column:email_2;type:varchar(256)" json:"email_2"`
	JobTitle           string         `gorm:"column:job_title;type:varchar(256)" json:"job_title"`
	PictureURL         string         `gorm:"column:profile_picture_url;type:varchar(512)" json:"profile_picture_url"`
	IsExternal         bool           `gorm:"column:is_external;type:boolean;default:false" json:"is_external"`
	ExternalProfile    datatypes.JSON `gorm:"column:external_profile" json:"-"` // 导入时的原始快照
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

type ContactBranch struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID   string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	Name        string `gorm:"column:name;type:varchar(256)"`
	Address1    string `gorm:"column:address_1;type:varchar(256)"`
	Address2    string `gorm:"column:address_2;type:varchar(256)"`
	City        string `gorm:"column:city;type:varchar(128)"`
	Zipcode     string `gorm:"column:zipcode;type:varchar(32)"`
	Country     string `gorm:"column:country;type:varchar(128)"`
	PhoneNumber string `gorm:"column:phone_number;type:varchar(64)"`
	FaxNumber   string `gorm:"column:fax_number;type:varchar(64)"`
	Website     string `gorm:"column:website;type:varchar(256)"`
	IsExternal  bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactBranch) TableName() string { return "contact_branches" }

type ContactCountry struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID   string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	CountryName string `gorm:"column:country_name;type:varchar(128)"`
	IsExternal  bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactCountry) TableName() string { return "contact_countries" }

type ContactEducation struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID      string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	GraduationYear *int   `gorm:"column:graduation_year"`
	SchoolName     string `gorm:"column:school_name;type:varchar(256)"`
	Program        string `gorm:"column:program;type:varchar(256)"`
	DegreeType     string `gorm:"column:degree_type;type:varchar(128)"`
	IsExternal     bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactEducation) TableName() string { return "contact_educations" }

type ContactSector struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID  string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	Name       string `gorm:"column:name;type:varchar(256)"`
	IsExternal bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactSector) TableName() string { return "contact_sectors" }

type ContactJobFunction struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID  string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	Name       string `gorm:"column:name;type:varchar(256)"`
	IsExternal bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactJobFunction) TableName() string { return "contact_job_functions" }

type ContactPhoneNumber struct {
	ID          uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	ContactID   string `gorm:"column:contact_id;type:varchar(36);not null;index"`
	PhoneType   string `gorm:"column:phone_type;type:varchar(32)"`
	PhoneNumber string `gorm:"column:phone_number;type:varchar(64)"`
	IsExternal  bool   `gorm:"column:is_external;type:boolean;default:false"`
}

func (ContactPhoneNumber) TableName() string { return "contact_phone_numbers" }

// ExternalContactProfile 目录服务返回的联系人档案（导入时一次性快照）
type ExternalContactProfile struct {
	Details      ExternalContactDetails `json:"details"`
	Branches     []ExternalBranch       `json:"branches"`
	Countries    []ExternalCountry      `json:"countries"`
	Education    []ExternalEducation    `json:"education"`
	Sectors      []ExternalSector       `json:"sectors"`
	JobFunctions []ExternalJobFunction  `json:"job_functions"`
	PhoneNumbers []ExternalPhoneNumber  `json:"phone_numbers"`
}

type ExternalContactDetails struct {
	InvestorID        ExternalID `json:"dealogic_investor_id"`
	InvestorContactID ExternalID `json:"dealogic_investor_contact_id"`
	Name              string     `json:"name"`
	Biography         string     `json:"biography"`
	Email1            string     `json:"email_1"`
	Email2            string     `json:"email_2"`
	JobTitle          string     `json:"job_title"`
	PictureURL        string     `json:"picture_url"`
}

type ExternalBranch struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Zipcode     string `json:"zipcode"`
	Country     string `json:"country"`
	PhoneNumber string `json:"phone_number"`
	FaxNumber   string `json:"fax_number"`
	Website     string `json:"website"`
}

type ExternalCountry struct {
	CountryName string `json:"country_name"`
}

type ExternalEducation struct {
	GraduationYear *int   `json:"graduation_year"`
	SchoolName     string `json:"school_name"`
	Program        string `json:"program"`
	DegreeType     string `json:"degree_type"`
}

type ExternalSector struct {
	SectorName string `json:"sector_name"`
}

type ExternalJobFunction struct {
	Name string `json:"name"`
}

type ExternalPhoneNumber struct {
	PhoneTypeID ExternalID `json:"phone_type_id"`
	PhoneNumber string     `json:"phone_number"`
}

// ImportedContact 一次导入需要落库的全部行
type ImportedContact struct {
	Contact      Contact
	Branches     []ContactBranch
	Countries    []ContactCountry
	Educations   []ContactEducation
	Sectors      []ContactSector
	JobFunctions []ContactJobFunction
	PhoneNumbers []ContactPhoneNumber
}
