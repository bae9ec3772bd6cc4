package handlers

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const notFutureYearTag = "notfutureyear"

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// It is safe to call more than once.
func RegisterValidators() error {
	var err error

	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}

		err = v.RegisterValidation(notFutureYearTag, notFutureYear)
	})

	return err
}

func notFutureYear(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(currentYear(time.Now()))
}

// Years are judged in UTC so the bound does not move with the server zone.
func currentYear(now time.Time) int {
	return now.UTC().Year()
}
