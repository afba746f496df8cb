package middleware

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/theminddepartment/booking-api/internal/model"
)

// RegisterValidators installs the scheduling tags on gin's binding
// engine: dateonly for YYYY-MM-DD strings and timeofday for HH:MM
// strings. Binding errors report fields by their json name.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	must(v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.DateFormat, fl.Field().String())
		return err == nil
	}))
	must(v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := model.ParseTimeOfDay(fl.Field().String())
		return err == nil
	}))

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
