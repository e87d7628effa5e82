// internal/adapter/adapter.go
package adapter

import (
	"OutreachSync/internal/interfaces"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ========== 目录服务工厂函数注册表 ==========
var (
	factoryMu       sync.RWMutex
	factoryRegistry = make(map[string]interfaces.DirectoryFactory)
)

// Register 供目录服务实现的 init 函数调用，注册工厂函数
func Register(provider string, factory interfaces.DirectoryFactory) {
	if factory == nil {
		panic(fmt.Sprintf("目录服务%s的工厂函数不能为nil", provider))
	}
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factoryRegistry[provider]; exists {
		logrus.Warnf("目录服务%s已注册，将覆盖原有实现", provider)
	}
	factoryRegistry[provider] = factory
}

// GetFactory 获取指定目录服务的工厂函数
func GetFactory(provider string) (interfaces.DirectoryFactory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	factory, ok := factoryRegistry[provider]
	return factory, ok
}

// ListFactories 列出所有已注册的目录服务（有序）
func ListFactories() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	providers := make([]string, 0, len(factoryRegistry))
	for p := range factoryRegistry {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
