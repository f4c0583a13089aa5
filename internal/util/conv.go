package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParamID 读取路径参数中的 ID，非法时返回校验错误
func ParamID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, Validationf("invalid %s", name)
	}
	return uint(id), nil
}
