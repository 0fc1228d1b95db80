package create_booking_link

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateRequest(req *Request) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
