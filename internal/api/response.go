package api

import (
	"errors"
	"net/http"

	"OutreachSync/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// envelope 统一响应结构
type envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	Field     string      `json:"field,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, envelope{Success: true, Data: data})
}

// respondError 按错误分类映射状态码；内部错误只记录日志，不返回细节
func respondError(c *gin.Context, logger *logrus.Logger, op string, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Store(err)
	}
	switch e.Kind {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, envelope{
			Message:   "Invalid field: " + e.Field,
			ErrorCode: e.Code,
			Field:     e.Field,
		})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, envelope{Message: "NOT FOUND", ErrorCode: e.Code})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"kind":   e.Kind.String(),
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(op + " failed")
		c.JSON(http.StatusInternalServerError, envelope{Message: "Internal server error", ErrorCode: e.Code})
	}
}

// bindError 绑定/校验失败转为 400，field 取第一个失败字段
func bindError(err error, fallback string) *apperr.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation(verrs[0].Field(), err)
	}
	return apperr.Validation(fallback, err)
}
