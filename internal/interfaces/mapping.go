package interfaces

import "context"

// MappingClient 机构 ↔ 股东组映射服务，found=false 表示当前无映射
type MappingClient interface {
	GroupForInstitution(ctx context.Context, companyID, institutionID string) (groupID string, found bool, err error)
	InstitutionForGroup(ctx context.Context, companyID, groupID string) (institutionID string, found bool, err error)
}
