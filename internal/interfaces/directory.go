package interfaces

import (
	"context"

	"OutreachSync/internal/config"
	"OutreachSync/internal/model"

	"github.com/sirupsen/logrus"
)

// DirectoryClient 外部投资人目录服务
type DirectoryClient interface {
	// GetContactProfile 返回完整档案；目录中不存在时返回 (nil, nil)
	GetContactProfile(ctx context.Context, externalContactID string) (*model.ExternalContactProfile, error)
}

// DirectoryFactory 目录服务客户端工厂函数签名
type DirectoryFactory func(cfg *config.ServiceConfig, logger *logrus.Logger) DirectoryClient
