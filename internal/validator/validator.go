package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"

	"github.com/helloca/ai-service/internal/models"
)

const (
	TypeMissing    = "value_error.missing"
	TypeJSONDecode = "value_error.jsondecode"
	TypeNotObject  = "type_error.dict"
	TypeNotString  = "type_error.str"
)

var validate = newValidate()

func newValidate() *playground.Validate {
	v := playground.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports every malformed field of a request body.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func bodyError(msg, typ string, path ...string) models.FieldError {
	return models.FieldError{Loc: append([]string{"body"}, path...), Msg: msg, Type: typ}
}

// DecodeChatRequest parses a chat payload. Unknown fields are ignored; a
// missing or null message, non-string values and bytes that are not UTF-8
// are reported as a *ValidationError.
func DecodeChatRequest(body []byte) (*models.ChatRequest, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &ValidationError{Fields: []models.FieldError{bodyError("field required", TypeMissing)}}
	}

	if !utf8.Valid(body) {
		return nil, &ValidationError{Fields: []models.FieldError{bodyError("body is not valid UTF-8", TypeJSONDecode)}}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Fields: []models.FieldError{bodyError("value is not a valid dict", TypeNotObject)}}
		}
		return nil, &ValidationError{Fields: []models.FieldError{bodyError(err.Error(), TypeJSONDecode)}}
	}
	if fields == nil {
		return nil, &ValidationError{Fields: []models.FieldError{bodyError("field required", TypeMissing)}}
	}

	req := &models.ChatRequest{}
	var errs []models.FieldError
	mistyped := make(map[string]bool)
	for name, dst := range map[string]**string{"message": &req.Message, "context": &req.Context} {
		if err := decodeString(fields[name], dst); err != nil {
			mistyped[name] = true
			errs = append(errs, bodyError("str type expected", TypeNotString, name))
		}
	}

	if err := validate.Struct(req); err != nil {
		var verrs playground.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate chat request: %w", err)
		}
		for _, fe := range verrs {
			if mistyped[fe.Field()] {
				continue
			}
			errs = append(errs, bodyError(tagMessage(fe.Tag()), tagType(fe.Tag()), fe.Field()))
		}
	}

	if len(errs) > 0 {
		sortFieldErrors(errs)
		return nil, &ValidationError{Fields: errs}
	}
	return req, nil
}

// decodeString leaves *dst nil for an absent or null value.
func decodeString(raw json.RawMessage, dst **string) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	*dst = &s
	return nil
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "field required"
	default:
		return fmt.Sprintf("failed on the %q rule", tag)
	}
}

func tagType(tag string) string {
	if tag == "required" {
		return TypeMissing
	}
	return "value_error." + tag
}

// sortFieldErrors orders errors by location so responses are deterministic.
func sortFieldErrors(errs []models.FieldError) {
	sort.SliceStable(errs, func(i, j int) bool {
		return strings.Join(errs[i].Loc, ".") < strings.Join(errs[j].Loc, ".")
	})
}
