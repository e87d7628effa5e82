package api

import (
	"OutreachSync/internal/config"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/model"
	"OutreachSync/internal/repository"
	"OutreachSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Handlers 全部业务接口
type Handlers struct {
	Task      *TaskHandler
	Link      *TaskLinkHandler
	Analytics *AnalyticsHandler
	Contact   *ContactHandler
}

// NewHandlers 组装仓储与服务；directory/mapping 为 nil 时相关接口返回 500
func NewHandlers(db *gorm.DB, cfg *config.Config, directory interfaces.DirectoryClient, mapping interfaces.MappingClient, logger *logrus.Logger) *Handlers {
	taskRepo := repository.NewTaskRepository(db)
	contactRepo := repository.NewContactRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	importer := service.NewImportService(contactRepo, directory, logger)
	reconciler := service.NewReconcileService(taskRepo, contactRepo, linkRepo, mapping, importer, logger,
		service.WithVerifyAfterWrite(cfg.Mapping.VerifyAfterWrite))
	taskSvc := service.NewTaskService(taskRepo, reconciler, logger)
	querySvc := service.NewTaskQueryService(repository.NewTaskReadRepository(db), taskRepo, logger)
	analyticsSvc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), logger)

	return &Handlers{
		Task:      NewTaskHandler(taskSvc, querySvc, logger),
		Link:      NewTaskLinkHandler(reconciler, logger),
		Analytics: NewAnalyticsHandler(analyticsSvc, logger),
		Contact:   NewContactHandler(importer, logger),
	}
}

// RegisterRoutes 注册 /company/:companyId 下的全部路由
func RegisterRoutes(r gin.IRouter, h *Handlers) {
	RegisterValidators()
	company := r.Group("/company/:companyId")

	// 任务
	company.POST("/task", h.Task.CreateTask)
	company.GET("/task/:taskId", h.Task.GetTask)
	company.DELETE("/task/:taskId", h.Task.DeleteTask)
	company.POST("/task/:taskId/followup", h.Task.AddFollowUp)
	company.DELETE("/task/:taskId/followup/:followupId", h.Task.RemoveFollowUp)
	company.GET("/taskTypes", h.Task.ListTaskTypes)

	// 关联
	company.PUT("/task/:taskId/contact/:contactId", h.Link.LinkContact)
	company.DELETE("/task/:taskId/contact/:contactId", h.Link.Unlink(model.KindContact, "contactId"))
	company.PUT("/task/:taskId/fromDealogicContact/:externalId", h.Link.LinkFromDealogicContact)
	links := []struct {
		path  string
		kind  model.CounterpartyKind
		param string
	}{
		{"/task/:taskId/institution/:institutionId", model.KindInstitution, "institutionId"},
		{"/task/:taskId/shareholderGroup/:groupId", model.KindShareholderGroup, "groupId"},
		{"/task/:taskId/fund/:fundId", model.KindFund, "fundId"},
		{"/task/:taskId/shareholder/:shareholderId", model.KindShareholder, "shareholderId"},
		{"/task/:taskId/dealogicInvestor/:externalContactId", model.KindExternalContact, "externalContactId"},
		{"/task/:taskId/executor/:executorId", model.KindExecutor, "executorId"},
	}
	for _, l := range links {
		company.PUT(l.path, h.Link.Link(l.kind, l.param))
		company.DELETE(l.path, h.Link.Unlink(l.kind, l.param))
	}

	// 列表
	company.GET("/tasks", h.Task.ListTasks(repository.ScopeCompany, ""))
	company.GET("/shareholder/:id/tasks", h.Task.ListTasks(repository.ScopeShareholder, "id"))
	company.GET("/shareholderGroup/:id/tasks", h.Task.ListTasks(repository.ScopeShareholderGroup, "id"))
	company.GET("/institution/:id/tasks", h.Task.ListTasks(repository.ScopeInstitution, "id"))
	company.GET("/fund/:id/tasks", h.Task.ListTasks(repository.ScopeFund, "id"))
	company.GET("/tasks/byDealogicContact/:id", h.Task.ListTasks(repository.ScopeExternalContact, "id"))
	company.GET("/tasks/byContact/:id", h.Task.ListTasks(repository.ScopeContact, "id"))

	// 统计
	for prefix, dim := range map[string]repository.Dimension{
		"/tasks/analytics/perExecutor": repository.DimensionExecutor,
		"/tasks/analytics/perType":     repository.DimensionType,
	} {
		company.POST(prefix+"/byYear", h.Analytics.Matrix(dim, repository.PeriodYear))
		company.POST(prefix+"/byMonth", h.Analytics.Matrix(dim, repository.PeriodMonth))
		company.POST(prefix+"/byTotals", h.Analytics.Totals(dim))
	}

	// 联系人导入
	company.POST("/contact/importFromDealogic/:externalId", h.Contact.ImportFromDealogic)
}
