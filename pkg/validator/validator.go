// Package validator 在gin的validator/v10引擎上注册自定义校验tag
package validator

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 自定义tag与允许值
var enums = map[string][]string{
	"gender":   {"M", "F", "U"},
	"votetype": {"AUTHOR", "BOOK", "ISSUER", "COMMENT"},
	"favtype":  {"AUTHOR", "BOOK", "ISSUER"},
}

// Register 注册所有自定义tag，重复调用无副作用
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("binding引擎不是validator/v10")
	}
	return RegisterOn(v)
}

// RegisterOn 在指定的validator实例上注册
func RegisterOn(v *validator.Validate) error {
	for tag, values := range enums {
		if err := v.RegisterValidation(tag, oneOf(values)); err != nil {
			return fmt.Errorf("注册校验tag %s 失败: %w", tag, err)
		}
	}
	if err := v.RegisterValidation("extension", hasExtension); err != nil {
		return fmt.Errorf("注册校验tag extension 失败: %w", err)
	}
	return nil
}

func oneOf(values []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := strings.ToUpper(fl.Field().String())
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

// hasExtension 文件名必须带扩展名（a.png 合法，.png 与 a. 不合法）
func hasExtension(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	idx := strings.LastIndex(name, ".")
	return idx > 0 && idx < len(name)-1
}
