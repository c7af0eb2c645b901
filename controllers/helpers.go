package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"jogakzip/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// PasswordHeader carries a resource password on detail reads of private
// resources, keeping it out of URLs and access logs.
const PasswordHeader = "X-Resource-Password"

var registerOnce sync.Once

// RegisterValidation makes validator messages use JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(utils.NewValidationError(validationMessage(err)))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		_ = c.Error(utils.NewValidationError(validationMessage(err)))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body: " + err.Error()
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fe.Field()+" is required")
		case "min":
			if fe.Kind() == reflect.String {
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
			}
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fe.Field()+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}

func pathID(c *gin.Context, param string) uint {
	return c.GetUint(param)
}

// withAuthStatus renders a password mismatch with the given status instead
// of the default 401.
func withAuthStatus(err error, status int) error {
	if utils.IsKind(err, utils.KindAuthorization) {
		return utils.WithStatus(err, status)
	}
	return err
}
