package controller

import (
	"seclink_backend/internal/access"
	"seclink_backend/internal/grading"
	"seclink_backend/internal/middleware"
	"seclink_backend/internal/util"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators 注册自定义校验标签，启动时调用一次
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
				_, err := grading.NormalizeLetter(fl.Field().String())
				return err == nil
			})
		}
	})
}

// caller 取出调用方身份，缺失时直接返回 401
func caller(ctx *gin.Context) (access.AuthContext, bool) {
	ac, ok := middleware.CurrentAuth(ctx)
	if !ok {
		util.Unauthorized(ctx)
	}
	return ac, ok
}

// callerAndID 同时解析路径中的 :id
func callerAndID(ctx *gin.Context) (access.AuthContext, uint, bool) {
	ac, ok := caller(ctx)
	if !ok {
		return ac, 0, false
	}
	id, err := util.ParamID(ctx, "id")
	if err != nil {
		util.HandleError(ctx, err)
		return ac, 0, false
	}
	return ac, id, true
}
