package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry in the "fields" list of a 400 body. Field holds the
// JSON name clients actually sent, never the Go struct field name.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes the request body into out and reports any problem as a
// structured 400. Callers just return on false; the response is already
// written.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequestDetails(ctx, "Invalid request body", bindDetails(err, out))
		return false
	}

	return true
}

// bindDetails translates the three error families a JSON bind can produce
// (validation tag failures, malformed JSON, type mismatches) into the details
// object of the error envelope.
func bindDetails(err error, out interface{}) interface{} {
	root := structTypeOf(out)

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]FieldError, 0, len(vErrs))

		for _, fe := range vErrs {
			fields = append(fields, fieldErrorFor(root, fe))
		}

		return gin.H{"fields": fields}
	}

	// Truncated bodies surface as bare EOF errors, not *json.SyntaxError.
	var synErr *json.SyntaxError
	if errors.As(err, &synErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := translateDotPath(root, typeErr.Field)
		if field == "" {
			field = strings.TrimSpace(typeErr.Field)
		}

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func fieldErrorFor(root reflect.Type, fe validator.FieldError) FieldError {
	rule := fe.Tag()
	param := fe.Param()

	return FieldError{
		Field:   jsonFieldPath(root, fe),
		Rule:    rule,
		Param:   param,
		Message: ruleMessage(rule, param),
	}
}

// jsonFieldPath turns a validator namespace like
// "BookRequest.Date" into the path clients recognise ("date").
func jsonFieldPath(root reflect.Type, fe validator.FieldError) string {
	ns := fe.StructNamespace()
	if ns == "" {
		ns = fe.Namespace()
	}

	if ns == "" {
		return fe.Field()
	}

	segs := strings.Split(ns, ".")

	// The namespace starts with the root struct's own type name.
	if root != nil && len(segs) > 0 && segs[0] == root.Name() {
		segs = segs[1:]
	}

	if path := translateSegments(root, segs); path != "" {
		return path
	}

	return fe.Field()
}

func translateDotPath(root reflect.Type, dotPath string) string {
	dotPath = strings.TrimSpace(dotPath)
	if dotPath == "" {
		return ""
	}

	return translateSegments(root, strings.Split(dotPath, "."))
}

// translateSegments maps each Go field segment to its json tag name, walking
// the struct types as it goes. Segments it cannot resolve pass through
// unchanged, index suffixes like "[2]" included.
func translateSegments(t reflect.Type, segs []string) string {
	if len(segs) == 0 {
		return ""
	}

	head, idx := splitIndexSuffix(segs[0])
	if head == "" {
		return translateSegments(t, segs[1:])
	}

	name := head
	var next reflect.Type

	if st := derefStruct(t); st != nil {
		if sf, ok := st.FieldByName(head); ok {
			name = jsonTagName(sf)
			next = elementType(sf.Type)
		}
	}

	if len(segs) == 1 {
		return name + idx
	}

	rest := translateSegments(next, segs[1:])
	if rest == "" {
		return name + idx
	}

	return name + idx + "." + rest
}

func splitIndexSuffix(seg string) (string, string) {
	if i := strings.Index(seg, "["); i >= 0 {
		return seg[:i], seg[i:]
	}

	return seg, ""
}

func structTypeOf(v interface{}) reflect.Type {
	return derefStruct(reflect.TypeOf(v))
}

func derefStruct(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t != nil && t.Kind() == reflect.Struct {
		return t
	}

	return nil
}

// elementType unwraps pointers and collections down to the element a nested
// namespace segment would refer to.
func elementType(t reflect.Type) reflect.Type {
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

func jsonTagName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

var fixedRuleMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"uuid":     "must be a valid UUID",
}

func ruleMessage(rule, param string) string {
	if msg, ok := fixedRuleMessages[rule]; ok {
		return msg
	}

	switch rule {
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "len":
		return "must be exactly " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	}

	if param != "" {
		return fmt.Sprintf("failed %s validation (%s)", rule, param)
	}

	return "failed " + rule + " validation"
}
