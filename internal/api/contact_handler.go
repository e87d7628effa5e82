package api

import (
	"net/http"

	"OutreachSync/internal/apperr"
	"OutreachSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContactHandler 目录联系人导入
type ContactHandler struct {
	importer *service.ImportService
	logger   *logrus.Logger
}

func NewContactHandler(importer *service.ImportService, logger *logrus.Logger) *ContactHandler {
	return &ContactHandler{importer: importer, logger: logger}
}

// ImportFromDealogic POST /company/:companyId/contact/importFromDealogic/:externalId
// 已导入时返回 200 + success=false + DEALOGIC_CONTACT_ALREADY_IMPORTED，data 中带已有ID
func (h *ContactHandler) ImportFromDealogic(c *gin.Context) {
	var uri companyURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondError(c, h.logger, "ImportFromDealogic", bindError(err, "uri"))
		return
	}
	externalID, err := pathID(c, "externalId")
	if err != nil {
		respondError(c, h.logger, "ImportFromDealogic", err)
		return
	}

	res, err := h.importer.ImportExternal(c.Request.Context(), uri.CompanyID, externalID)
	if err != nil {
		respondError(c, h.logger, "ImportFromDealogic", err)
		return
	}
	if res.AlreadyImported {
		c.JSON(http.StatusOK, envelope{
			Success:   false,
			Data:      gin.H{"id": res.ContactID},
			Message:   "Contact already imported",
			ErrorCode: apperr.CodeAlreadyImported,
		})
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"id": res.ContactID})
}
