package adapter

import (
	"OutreachSync/internal/config"
	"OutreachSync/internal/interfaces"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NewDirectoryClient 按 cfg.DirectoryProvider 从注册表创建目录服务客户端
func NewDirectoryClient(cfg *config.Config, logger *logrus.Logger) (interfaces.DirectoryClient, error) {
	provider := cfg.DirectoryProvider
	if provider == "" {
		provider = config.ServiceDealogic
	}
	factory, ok := GetFactory(provider)
	if !ok {
		return nil, fmt.Errorf("目录服务%s未注册（已注册：%v）", provider, ListFactories())
	}
	svcCfg, ok := cfg.Services[provider]
	if !ok || svcCfg.BaseURL == "" {
		return nil, fmt.Errorf("目录服务%s缺少 services.%s.base_url 配置", provider, provider)
	}
	client := factory(&svcCfg, logger)
	if client == nil {
		return nil, fmt.Errorf("目录服务%s工厂函数返回nil", provider)
	}
	logger.WithField("provider", provider).Info("目录服务客户端初始化成功")
	return client, nil
}
