package sentiment

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// symbolRe matches exchange tickers, including class shares ("BRK.A") and
// hyphenated listings.
var symbolRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,11}$`)

func init() {
	_ = validate.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return symbolRe.MatchString(fl.Field().String())
	})
}

// Request shapes for the typed operations. Validation runs before any
// network request is issued; a failure surfaces as ErrInvalidArgument.

type symbolRequest struct {
	Symbol string `validate:"required,symbol"`
}

type sortRequest struct {
	Metric string `validate:"required,oneof=sentiment AHI RHI SGP"`
	Limit  int    `validate:"required,gt=0,lte=200"`
}

type historicalRequest struct {
	Metric string `validate:"required,oneof=sentiment AHI RHI SGP"`
	Start  int64  `validate:"required,gt=0"`
	End    int64  `validate:"required,gtfield=Start"`
}

type bulkRequest struct {
	Symbols []string `validate:"required,min=1,max=100,dive,required,symbol"`
}

type callRequest struct {
	Endpoint string `validate:"required,ascii,excludesall=/?&"`
}

// checkRequest validates a request struct and renders field errors into a
// single readable ErrInvalidArgument.
func checkRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fieldErrorMessage(verrs[0]))
}

func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "symbol":
		return fmt.Sprintf("%s must be a ticker symbol", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
