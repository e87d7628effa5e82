package api

import (
	"errors"
	"io"
	"net/http"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/model"
	"OutreachSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// TaskLinkHandler 任务与联系人/机构/股东组/基金/股东/执行人的关联接口
type TaskLinkHandler struct {
	reconciler *service.ReconcileService
	logger     *logrus.Logger
}

func NewTaskLinkHandler(reconciler *service.ReconcileService, logger *logrus.Logger) *TaskLinkHandler {
	return &TaskLinkHandler{reconciler: reconciler, logger: logger}
}

// contactLinkBody 联系人所属机构或股东组，二者至多填一个
type contactLinkBody struct {
	DealogicInvestorID   string `json:"dealogicInvestorId" binding:"omitempty,extid"`
	DealogicInvestorName string `json:"dealogicInvestorName"`
	ShareholderGroupID   string `json:"shareholderGroupId" binding:"omitempty,extid"`
	ShareholderGroupName string `json:"shareholderGroupName"`
}

type nameBody struct {
	Name string `json:"name" binding:"max=256"`
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return bindError(err, "body")
	}
	return nil
}

// LinkContact PUT /company/:companyId/task/:taskId/contact/:contactId
func (h *TaskLinkHandler) LinkContact(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "LinkContact", bindError(err, "uri"))
		return
	}
	contactID, err := pathID(c, "contactId")
	if err != nil {
		respondError(c, h.logger, "LinkContact", err)
		return
	}
	var body contactLinkBody
	if err := bindOptionalJSON(c, &body); err != nil {
		respondError(c, h.logger, "LinkContact", err)
		return
	}

	hint := service.NoHint()
	switch {
	case body.DealogicInvestorID != "" && body.ShareholderGroupID != "":
		respondError(c, h.logger, "LinkContact",
			apperr.Validation("shareholderGroupId", errors.New("dealogicInvestorId and shareholderGroupId are exclusive")))
		return
	case body.DealogicInvestorID != "":
		hint = service.InstitutionHint(body.DealogicInvestorID, body.DealogicInvestorName)
	case body.ShareholderGroupID != "":
		hint = service.GroupHint(body.ShareholderGroupID, body.ShareholderGroupName)
	}

	err = h.reconciler.LinkCounterparty(c.Request.Context(), service.LinkRequest{
		CompanyID:      uri.CompanyID,
		TaskID:         uri.TaskID,
		Kind:           model.KindContact,
		CounterpartyID: contactID,
		Hint:           hint,
	})
	if err != nil {
		respondError(c, h.logger, "LinkContact", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"taskId": uri.TaskID, "contactId": contactID})
}

// LinkFromDealogicContact PUT /company/:companyId/task/:taskId/fromDealogicContact/:externalId
func (h *TaskLinkHandler) LinkFromDealogicContact(c *gin.Context) {
	var uri taskURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "LinkFromDealogicContact", bindError(err, "uri"))
		return
	}
	externalID, err := pathID(c, "externalId")
	if err != nil {
		respondError(c, h.logger, "LinkFromDealogicContact", err)
		return
	}
	contactID, err := h.reconciler.LinkFromExternalContact(c.Request.Context(), uri.CompanyID, uri.TaskID, externalID)
	if err != nil {
		respondError(c, h.logger, "LinkFromDealogicContact", err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"contactId": contactID})
}

// Link 机构/股东组/基金/股东/目录联系人/执行人的关联，请求体可带 {name}
func (h *TaskLinkHandler) Link(kind model.CounterpartyKind, param string) gin.HandlerFunc {
	op := "Link " + string(kind)
	return func(c *gin.Context) {
		var uri taskURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, h.logger, op, bindError(err, "uri"))
			return
		}
		id, err := pathID(c, param)
		if err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		var body nameBody
		if err := bindOptionalJSON(c, &body); err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		err = h.reconciler.LinkCounterparty(c.Request.Context(), service.LinkRequest{
			CompanyID:      uri.CompanyID,
			TaskID:         uri.TaskID,
			Kind:           kind,
			CounterpartyID: id,
			Name:           body.Name,
		})
		if err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"taskId": uri.TaskID, string(kind) + "Id": id})
	}
}

// Unlink 只删除指定的一行
func (h *TaskLinkHandler) Unlink(kind model.CounterpartyKind, param string) gin.HandlerFunc {
	op := "Unlink " + string(kind)
	return func(c *gin.Context) {
		var uri taskURI
		if err := c.ShouldBindUri(&uri); err != nil {
			respondError(c, h.logger, op, bindError(err, "uri"))
			return
		}
		id, err := pathID(c, param)
		if err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		if err := h.reconciler.RemoveCounterparty(c.Request.Context(), uri.CompanyID, uri.TaskID, kind, id); err != nil {
			respondError(c, h.logger, op, err)
			return
		}
		respondOK(c, http.StatusOK, gin.H{"taskId": uri.TaskID, string(kind) + "Id": id})
	}
}
