package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes and validates the body; unknown fields are ignored.
// On failure it writes a 400 and returns false.
func BindJSON(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", parseBindError(err, out, "json"))
		return false
	}

	return true
}

// BindQuery is BindJSON for the query string; field names come from form tags.
func BindQuery(ctx *gin.Context, out any) bool {
	if err := ctx.ShouldBindQuery(out); err != nil {
		RespondBadRequest(ctx, "Invalid query parameters", parseBindError(err, out, "form"))
		return false
	}

	return true
}

func parseBindError(err error, out any, tagName string) any {
	rootType := baseStructType(out)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]FieldError, 0, len(validationErrs))

		for _, fe := range validationErrs {
			fields = append(fields, FieldError{
				Field:   fieldPath(rootType, fe, tagName),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := mapStructPath(rootType, strings.Split(strings.TrimSpace(typeErr.Field), "."), tagName)

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
			}},
		}
	}

	// form binding surfaces raw strconv errors without the field name
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return gin.H{"query": "invalid_number", "value": numErr.Num}
	}

	return gin.H{"reason": err.Error()}
}

func baseStructType(v any) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// fieldPath turns "CreateReportRequest.Price" into the wire name "price".
func fieldPath(rootType reflect.Type, fe validator.FieldError, tagName string) string {
	namespace := fe.StructNamespace()
	if namespace == "" {
		return fe.Field()
	}

	parts := strings.Split(namespace, ".")

	if rootType != nil && len(parts) > 1 && parts[0] == rootType.Name() {
		parts = parts[1:]
	}

	if path := mapStructPath(rootType, parts, tagName); path != "" {
		return path
	}

	return fe.Field()
}

func mapStructPath(rootType reflect.Type, parts []string, tagName string) string {
	current := rootType
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		name, index, _ := strings.Cut(part, "[")
		if index != "" {
			index = "[" + index
		}

		wire := name
		var next reflect.Type

		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(name); ok {
					wire = tagNameOf(sf, tagName)
					next = elemType(sf.Type)
				}
			}
		}

		out = append(out, wire+index)
		current = next
	}

	return strings.Join(out, ".")
}

func tagNameOf(sf reflect.StructField, tagName string) string {
	name, _, _ := strings.Cut(sf.Tag.Get(tagName), ",")
	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func elemType(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}

	return nil
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "longitude":
		return "must be a longitude between -180 and 180"
	case "latitude":
		return "must be a latitude between -90 and 90"
	case notFutureYearTag:
		return "must not be in the future"
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
