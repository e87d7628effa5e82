package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/metrics"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ImportResult 导入结果；AlreadyImported 表示命中已有映射，本次未写入
type ImportResult struct {
	ContactID       string
	AlreadyImported bool
}

// ImportService 目录联系人导入（读穿、幂等）
type ImportService struct {
	contacts  repository.ContactRepository
	directory interfaces.DirectoryClient
	logger    *logrus.Logger
}

func NewImportService(contacts repository.ContactRepository, directory interfaces.DirectoryClient, logger *logrus.Logger) *ImportService {
	return &ImportService{contacts: contacts, directory: directory, logger: logger}
}

// ImportExternal 已导入则直接返回本地ID；否则拉取档案并在一个事务内落库
func (s *ImportService) ImportExternal(ctx context.Context, companyID, externalContactID string) (ImportResult, error) {
	if strings.TrimSpace(companyID) == "" {
		return ImportResult{}, apperr.Validation("companyId", errors.New("company id is required"))
	}
	if strings.TrimSpace(externalContactID) == "" {
		return ImportResult{}, apperr.Validation("externalContactId", errors.New("external contact id is required"))
	}
	log := s.logger.WithFields(logrus.Fields{"company_id": companyID, "external_contact_id": externalContactID})

	// 1. 已有映射直接返回
	existing, err := s.contacts.FindByExternalID(ctx, companyID, externalContactID)
	if err != nil {
		metrics.ImportTotal.WithLabelValues("failed").Inc()
		return ImportResult{}, apperr.Store(fmt.Errorf("查询导入映射失败: %w", err))
	}
	if existing != nil {
		metrics.ImportTotal.WithLabelValues("already_imported").Inc()
		return ImportResult{ContactID: existing.ID, AlreadyImported: true}, nil
	}

	// 2. 拉取目录档案
	if s.directory == nil {
		metrics.ImportTotal.WithLabelValues("failed").Inc()
		return ImportResult{}, apperr.External(errors.New("directory client not configured"))
	}
	profile, err := s.directory.GetContactProfile(ctx, externalContactID)
	if err != nil {
		metrics.ImportTotal.WithLabelValues("failed").Inc()
		log.WithError(err).Error("拉取目录联系人失败")
		return ImportResult{}, apperr.External(fmt.Errorf("fetch external contact: %w", err))
	}
	if profile == nil {
		metrics.ImportTotal.WithLabelValues("not_found").Inc()
		return ImportResult{}, apperr.NotFound(apperr.CodeExternalContactNotFound,
			fmt.Errorf("external contact %s not found", externalContactID))
	}

	// 3. 落库
	imported, err := buildImportedContact(companyID, externalContactID, profile)
	if err != nil {
		metrics.ImportTotal.WithLabelValues("failed").Inc()
		return ImportResult{}, apperr.Store(err)
	}
	if err := s.contacts.CreateImported(ctx, imported); err != nil {
		if !errors.Is(err, repository.ErrContactAlreadyImported) {
			metrics.ImportTotal.WithLabelValues("failed").Inc()
			log.WithError(err).Error("保存导入联系人失败")
			return ImportResult{}, apperr.Store(err)
		}
		// 并发导入：唯一约束冲突，读取对方写入的ID
		winner, findErr := s.contacts.FindByExternalID(ctx, companyID, externalContactID)
		if findErr != nil || winner == nil {
			metrics.ImportTotal.WithLabelValues("failed").Inc()
			return ImportResult{}, apperr.Store(fmt.Errorf("重新读取导入映射失败: %v", findErr))
		}
		log.WithField("contact_id", winner.ID).Info("联系人已被并发导入")
		metrics.ImportTotal.WithLabelValues("already_imported").Inc()
		return ImportResult{ContactID: winner.ID, AlreadyImported: true}, nil
	}

	metrics.ImportTotal.WithLabelValues("imported").Inc()
	log.WithField("contact_id", imported.Contact.ID).Info("目录联系人导入成功")
	return ImportResult{ContactID: imported.Contact.ID}, nil
}

// buildImportedContact 档案映射为本地行，全部标记 is_external
func buildImportedContact(companyID, externalContactID string, p *model.ExternalContactProfile) (*model.ImportedContact, error) {
	snapshot, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("序列化目录档案失败: %w", err)
	}
	id := uuid.NewString()
	extID := externalContactID
	contact := model.Contact{
		ID:                id,
		CompanyID:         companyID,
		ExternalContactID: &extID,
		Name:              p.Details.Name,
		Biography:         p.Details.Biography,
		Email1:            p.Details.Email1,
		Email2:            p.Details.Email2,
		JobTitle:          p.Details.JobTitle,
		PictureURL:        p.Details.PictureURL,
		IsExternal:        true,
		ExternalProfile:   datatypes.JSON(snapshot),
	}
	if p.Details.InvestorID != "" {
		investor := p.Details.InvestorID.String()
		contact.ExternalInvestorID = &investor
	}

	out := &model.ImportedContact{Contact: contact}
	for _, b := range p.Branches {
		out.Branches = append(out.Branches, model.ContactBranch{
			ContactID:   id,
			Name:        b.Name,
			Address1:    b.Address1,
			Address2:    b.Address2,
			City:        b.City,
			Zipcode:     b.Zipcode,
			Country:     b.Country,
			PhoneNumber: b.PhoneNumber,
			FaxNumber:   b.FaxNumber,
			Website:     b.Website,
			IsExternal:  true,
		})
	}
	for _, c := range p.Countries {
		out.Countries = append(out.Countries, model.ContactCountry{ContactID: id, CountryName: c.CountryName, IsExternal: true})
	}
	for _, e := range p.Education {
		out.Educations = append(out.Educations, model.ContactEducation{
			ContactID:      id,
			GraduationYear: e.GraduationYear,
			SchoolName:     e.SchoolName,
			Program:        e.Program,
			DegreeType:     e.DegreeType,
			IsExternal:     true,
		})
	}
	for _, sec := range p.Sectors {
		out.Sectors = append(out.Sectors, model.ContactSector{ContactID: id, Name: sec.SectorName, IsExternal: true})
	}
	for _, jf := range p.JobFunctions {
		out.JobFunctions = append(out.JobFunctions, model.ContactJobFunction{ContactID: id, Name: jf.Name, IsExternal: true})
	}
	for _, ph := range p.PhoneNumbers {
		out.PhoneNumbers = append(out.PhoneNumbers, model.ContactPhoneNumber{
			ContactID:   id,
			PhoneType:   ph.PhoneTypeID.String(),
			PhoneNumber: ph.PhoneNumber,
			IsExternal:  true,
		})
	}
	return out, nil
}
