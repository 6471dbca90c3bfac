// Package validator adapts go-playground/validator to echo and turns
// validation failures into a single domain error listing every issue.
package validator

import (
	"reflect"
	"slices"
	"strings"

	"shopreg/internal/delivery/http/request"
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/errors"

	"github.com/go-playground/validator/v10"
)

const (
	// bcrypt ignores everything past 72 bytes of input.
	maxPasswordBytes = 72

	passwordSymbols = `!@#$%^&*(),.?":{}|<>`

	tagHasDigit    = "hasdigit"
	tagHasSymbol   = "hassymbol"
	tagMaxBytes    = "maxbytes"
	tagNotBlank    = "notblank"
	tagUniqueItems = "uniqueitems"
)

// fieldOrder keeps issues in the order the form presents its fields.
var fieldOrder = []string{"username", "password", "rememberMe", "shopNames"}

var messages = map[string]string{
	"username.required":     "Username is required",
	"username.min":          "Username must be at least 3 characters long",
	"password.required":     "Password is required",
	"password.min":          "Password must be at least 8 characters long",
	"password.maxbytes":     "Password must be at most 72 bytes long",
	"password.hasdigit":     "Password must contain at least one number",
	"password.hassymbol":    "Password must contain at least one special character",
	"shopNames.required":    "You must enter at least 3 shop names",
	"shopNames.min":         "You must enter at least 3 shop names",
	"shopNames.notblank":    "Shop name cannot be empty",
	"shopNames.uniqueitems": "Shop names must be unique",
}

// Issue describes one violated rule.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

// New builds a validator that reports JSON field names and knows the
// cross-field rules of the signup form.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
	v.RegisterStructValidation(signupRules, request.SignupRequest{})

	return &CustomValidator{validator: v}
}

// Validate checks i and returns ErrValidationFailed carrying every issue found.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate request")
	}

	issues := toIssues(fieldErrs)
	text := make([]string, len(issues))
	for i, issue := range issues {
		text[i] = issue.Message
	}

	return domainerrors.ErrValidationFailed.
		WithMessage(strings.Join(text, "; ")).
		WithDetails(issues)
}

func toIssues(fieldErrs validator.ValidationErrors) []Issue {
	issues := make([]Issue, 0, len(fieldErrs))
	seen := make(map[Issue]struct{}, len(fieldErrs))
	for _, fe := range fieldErrs {
		issue := Issue{Field: fe.Field(), Message: message(fe)}
		if _, dup := seen[issue]; dup {
			continue
		}
		seen[issue] = struct{}{}
		issues = append(issues, issue)
	}

	slices.SortStableFunc(issues, func(a, b Issue) int {
		return rank(a.Field) - rank(b.Field)
	})

	return issues
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}

	return fe.Field() + " is invalid"
}

func rank(field string) int {
	if idx := slices.Index(fieldOrder, field); idx >= 0 {
		return idx
	}

	return len(fieldOrder)
}

// signupRules reports the rules that must be checked independently of the
// field tags, so that every violated rule shows up in one response.
func signupRules(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(request.SignupRequest)
	if !ok {
		return
	}

	if req.Password != "" {
		if !strings.ContainsAny(req.Password, "0123456789") {
			sl.ReportError(req.Password, "password", "Password", tagHasDigit, "")
		}
		if !strings.ContainsAny(req.Password, passwordSymbols) {
			sl.ReportError(req.Password, "password", "Password", tagHasSymbol, "")
		}
		if len(req.Password) > maxPasswordBytes {
			sl.ReportError(req.Password, "password", "Password", tagMaxBytes, "72")
		}
	}

	seen := make(map[string]struct{}, len(req.ShopNames))
	blank, duplicate := false, false
	for _, name := range req.ShopNames {
		if strings.TrimSpace(name) == "" {
			blank = true
		}
		if _, dup := seen[name]; dup {
			duplicate = true
		}
		seen[name] = struct{}{}
	}
	if blank {
		sl.ReportError(req.ShopNames, "shopNames", "ShopNames", tagNotBlank, "")
	}
	if duplicate {
		sl.ReportError(req.ShopNames, "shopNames", "ShopNames", tagUniqueItems, "")
	}
}
