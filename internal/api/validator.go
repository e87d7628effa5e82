package api

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"OutreachSync/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// extid 路径与请求体中的各类ID：uuid 或外部系统ID
var extIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,63}$`)

var registerOnce sync.Once

// RegisterValidators 向 gin 的校验器注册 extid 规则，字段名取 uri/json/form 标签
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"uri", "json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("extid", func(fl validator.FieldLevel) bool {
			return extIDPattern.MatchString(fl.Field().String())
		})
	})
}

// pathID 读取并校验单个路径参数
func pathID(c *gin.Context, name string) (string, error) {
	value := c.Param(name)
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return value, nil
	}
	if err := v.Var(value, "required,extid"); err != nil {
		return "", apperr.Validation(name, err)
	}
	return value, nil
}

type companyURI struct {
	CompanyID string `uri:"companyId" binding:"required,extid"`
}

type taskURI struct {
	CompanyID string `uri:"companyId" binding:"required,extid"`
	TaskID    string `uri:"taskId" binding:"required,extid"`
}
