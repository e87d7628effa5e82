package api

import (
	"net/http"
	"time"

	"OutreachSync/internal/repository"
	"OutreachSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskHandler 任务创建/删除/详情/列表/跟进记录
type TaskHandler struct {
	tasks   *service.TaskService
	queries *service.TaskQueryService
	logger  *logrus.Logger
}

func NewTaskHandler(tasks *service.TaskService, queries *service.TaskQueryService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, queries: queries, logger: logger}
}

type createTaskBody struct {
	Title           string     `json:"task_title" binding:"required,max=256"`
	Type            string     `json:"task_type" binding:"max=64"`
	Subtype         string     `json:"task_subtype" binding:"max=64"`
	TaskTypeID      *string    `json:"mz_task_type_id" binding:"omitempty,extid"`
	TaskSubtypeID   *string    `json:"mz_task_subtype_id" binding:"omitempty,extid"`
	Description     string     `json:"task_description"`
	Due             time.Time  `json:"task_due" binding:"required"`
	StartDate       *time.Time `json:"task_start_date"`
	Origin          string     `json:"task_origin" binding:"max=64"`
	CreatedBy       string     `json:"created_by" binding:"omitempty,extid"`
	Executors       []string   `json:"executors" binding:"omitempty,dive,extid"`
	InstitutionID   string     `json:"institution_id" binding:"omitempty,extid"`
	InstitutionName string     `json:"institution_name"`
	FundID          string     `json:"fund_id" binding:"omitempty,extid"`
	FundName        string     `json:"fund_name"`
}

// CreateTask POST /company/:companyId/task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var uri companyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "CreateTask", bindError(err, "uri"))
		return
	}
	var body createTaskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, "CreateTask", bindError(err, "body"))
		return
	}
	task, err := h.tasks.CreateTask(c.Request.Context(), service.CreateTaskRequest{
		CompanyID:       uri.CompanyID,
		Title:           body.Title,
		Type:            body.Type,
		Subtype:         body.Subtype,
		TaskTypeID:      body.TaskTypeID,
		TaskSubtypeID:   body.TaskSubtypeID,
		Description:     body.Description,
		Due:             body.Due,
		StartDate:       body.StartDate,
		Origin:          body.Origin,
		CreatedBy:       body.CreatedBy,
		ExecutorIDs:     body.Executors,
		InstitutionID:   body.InstitutionID,
		InstitutionName: body.InstitutionName,
		FundID:          body.FundID,
		FundName:        body.FundName,
	})
	if err != nil {
		respondError(c, h.logger, "CreateTask", err)
		return
	}
	respondOK(c, http.StatusCreated, task)
}

// DeleteTask DELETE /company/:companyId/task/:taskId
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "DeleteTask", bindError(err, "uri"))
		return
	}
	if err := h.tasks.DeleteTask(c.Request.Context(), uri.CompanyID, uri.TaskID); err != nil {
		respondError(c, h.logger, "DeleteTask", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"taskId": uri.TaskID})
}

// GetTask GET /company/:companyId/task/:taskId
func (h *TaskHandler) GetTask(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "GetTask", bindError(err, "uri"))
		return
	}
	detail, err := h.queries.GetTaskDetail(c.Request.Context(), uri.CompanyID, uri.TaskID)
	if err != nil {
		respondError(c, h.logger, "GetTask", err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

type followUpBody struct {
	Annotation     string     `json:"annotation" binding:"required"`
	AnnotationDate *time.Time `json:"annotationDate"`
	CreatedBy      string     `json:"created_by" binding:"omitempty,extid"`
}

// AddFollowUp POST /company/:companyId/task/:taskId/followup
func (h *TaskHandler) AddFollowUp(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "AddFollowUp", bindError(err, "uri"))
		return
	}
	var body followUpBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, h.logger, "AddFollowUp", bindError(err, "body"))
		return
	}
	req := service.FollowUpRequest{
		CompanyID:  uri.CompanyID,
		TaskID:     uri.TaskID,
		CreatedBy:  body.CreatedBy,
		Annotation: body.Annotation,
	}
	if body.AnnotationDate != nil {
		req.AnnotationDate = *body.AnnotationDate
	}
	f, err := h.tasks.AddFollowUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, "AddFollowUp", err)
		return
	}
	respondOK(c, http.StatusCreated, f)
}

// RemoveFollowUp DELETE /company/:companyId/task/:taskId/followup/:followupId
func (h *TaskHandler) RemoveFollowUp(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "RemoveFollowUp", bindError(err, "uri"))
		return
	}
	followUpID, err := pathID(c, "followupId")
	if err != nil {
		respondError(c, h.logger, "RemoveFollowUp", err)
		return
	}
	if err := h.tasks.RemoveFollowUp(c.Request.Context(), uri.CompanyID, uri.TaskID, followUpID); err != nil {
		respondError(c, h.logger, "RemoveFollowUp", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"followupId": followUpID})
}

type listQuery struct {
	PerPage    int `form:"perPage" binding:"min=0"`
	PageNumber int `form:"pageNumber" binding:"min=0"`
}

// ListTasks 列表接口；param 为空时按公司列出
// GET /company/:companyId/tasks?perPage=10&pageNumber=1
func (h *TaskHandler) ListTasks(scope repository.ListScope, param string) gin.HandlerFunc {
	op := "ListTasks " + string(scope)
	return func(c *gin.Context) {
		var uri companyURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, h.logger, op, bindError(err, "uri"))
			return
		}
		var scopeID string
		if param != "" {
			id, err := pathID(c, param)
			if err != nil {
				respondError(c, h.logger, op, err)
				return
			}
			scopeID = id
		}
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			respondError(c, h.logger, op, bindError(err, "query"))
			return
		}
		page, err := h.queries.ListTasks(c.Request.Context(), service.ListRequest{
			CompanyID:  uri.CompanyID,
			Scope:      scope,
			ScopeID:    scopeID,
			PageNumber: q.PageNumber,
			PerPage:    q.PerPage,
		})
		if err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		respondOK(c, http.StatusOK, page)
	}
}

// ListTaskTypes GET /company/:companyId/taskTypes
func (h *TaskHandler) ListTaskTypes(c *gin.Context) {
	var uri companyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "ListTaskTypes", bindError(err, "uri"))
		return
	}
	nodes, err := h.queries.ListTaskTypes(c.Request.Context(), uri.CompanyID)
	if err != nil {
		respondError(c, h.logger, "ListTaskTypes", err)
		return
	}
	respondOK(c, http.StatusOK, nodes)
}
