package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"OutreachSync/internal/model"

	"gorm.io/gorm"
)

// ErrContactAlreadyImported (company_id, external_contact_id) 唯一约束冲突
var ErrContactAlreadyImported = errors.New("contact already imported")

// ContactRepository 联系人仓储
type ContactRepository interface {
	FindByExternalID(ctx context.Context, companyID, externalContactID string) (*model.Contact, error)
	Exists(ctx context.Context, companyID, contactID string) (bool, error)
	CreateImported(ctx context.Context, imported *model.ImportedContact) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository 创建联系人仓储
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// FindByExternalID 未导入时返回 nil, nil
func (r *contactRepository) FindByExternalID(ctx context.Context, companyID, externalContactID string) (*model.Contact, error) {
	var c model.Contact
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND external_contact_id = ?", companyID, externalContactID).
		Take(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *contactRepository) Exists(ctx context.Context, companyID, contactID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("company_id = ? AND id = ?", companyID, contactID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateImported 联系人及其明细表在同一事务内写入
func (r *contactRepository) CreateImported(ctx context.Context, imported *model.ImportedContact) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("开启事务失败: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := tx.Create(&imported.Contact).Error; err != nil {
		tx.Rollback()
		if isDuplicateContact(err) {
			return ErrContactAlreadyImported
		}
		return fmt.Errorf("保存联系人失败: %w", err)
	}

	children := []struct {
		name string
		rows interface{}
		n    int
	}{
		{"branches", &imported.Branches, len(imported.Branches)},
		{"countries", &imported.Countries, len(imported.Countries)},
		{"educations", &imported.Educations, len(imported.Educations)},
		{"sectors", &imported.Sectors, len(imported.Sectors)},
		{"job functions", &imported.JobFunctions, len(imported.JobFunctions)},
		{"phone numbers", &imported.PhoneNumbers, len(imported.PhoneNumbers)},
	}
	for _, child := range children {
		if child.n == 0 {
			continue
		}
		if err := tx.Create(child.rows).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("保存联系人%s失败: %w", child.name, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

func isDuplicateContact(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "uk_contact_company_external") ||
		strings.Contains(msg, "contacts.company_id, contacts.external_contact_id")
}
