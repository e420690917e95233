package utils

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hostelhq/hostel-app/models"
)

var validatorsOnce sync.Once

// RegisterValidators installs the custom binding tags used in request
// structs. Safe to call from both main and tests.
func RegisterValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		_ = v.RegisterValidation("rolename", func(fl validator.FieldLevel) bool {
			return models.ValidRole(fl.Field().String())
		})

		_ = v.RegisterValidation("roomstatus", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case models.RoomAvailable, models.RoomFull, models.RoomMaintenance:
				return true
			}
			return false
		})
	})
}
