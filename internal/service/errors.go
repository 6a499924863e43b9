package service

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeForbidden       = "FORBIDDEN"
	CodeNotShared       = "NOT_SHARED"
	CodeVersionConflict = "VERSION_CONFLICT"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error { return b.Err }

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

type Resource string

const (
	ResourceTask      Resource = "task"
	ResourceProject   Resource = "project"
	ResourceMilestone Resource = "milestone"
	ResourceWorkflow  Resource = "workflow"
	ResourceTemplate  Resource = "template"
)

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value of field '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewForbidden(resource Resource, id string) *BusinessError {
	return NewBusinessError(CodeForbidden,
		fmt.Sprintf("%s %s is not accessible", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
}

func NewNotShared() *BusinessError {
	return NewBusinessError(CodeNotShared, "project not found or not shared")
}

func NewVersionConflict(resource Resource, id string, err error) *BusinessError {
	busErr := NewBusinessError(CodeVersionConflict,
		fmt.Sprintf("%s %s was modified concurrently", resource, id),
		ToDetail("id", id))
	busErr.Err = err
	return busErr
}
