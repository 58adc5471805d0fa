// Package domain defines the value types shared by every layer of Crusader:
// the Result sum type engine operations return, the closed error-kind set,
// and the typed views of campaigns, tasks, and attachments.
//
// Engines never return Go errors across their public API. Every failure
// travels as a Result carrying a kind, a message an agent can read, and a
// short list of concrete suggestions.
package domain

// ErrorKind classifies a failed Result. The set is closed.
type ErrorKind string

const (
	KindValidationError       ErrorKind = "validation_error"
	KindNotFound              ErrorKind = "not_found"
	KindAlreadyExists         ErrorKind = "already_exists"
	KindBusinessRuleViolation ErrorKind = "business_rule_violation"
	KindDependencyError       ErrorKind = "dependency_error"
	KindOperationFailed       ErrorKind = "operation_failed"
	KindUnauthorized          ErrorKind = "unauthorized"
	KindForbidden             ErrorKind = "forbidden"
)

// Result is the outcome of an engine operation: either Success with Data,
// or a failure with Kind, Message, Details, and Suggestions.
type Result struct {
	Success     bool           `json:"success"`
	Data        any            `json:"data,omitempty"`
	Kind        ErrorKind      `json:"error_type,omitempty"`
	Message     string         `json:"error_message,omitempty"`
	Details     map[string]any `json:"error_details,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
}

// IsSuccess reports whether the operation succeeded.
func (r Result) IsSuccess() bool { return r.Success }

// IsFailure reports whether the operation failed.
func (r Result) IsFailure() bool { return !r.Success }

// DataMap returns Data as a map when it is one, or nil.
func (r Result) DataMap() map[string]any {
	m, _ := r.Data.(map[string]any)
	return m
}

// OK creates a successful Result.
func OK(data any, suggestions ...string) Result {
	return Result{Success: true, Data: data, Suggestions: suggestions}
}

// Fail creates a failed Result with an explicit kind.
func Fail(kind ErrorKind, message string, details map[string]any, suggestions ...string) Result {
	if details == nil {
		details = map[string]any{}
	}
	return Result{
		Success:     false,
		Kind:        kind,
		Message:     message,
		Details:     details,
		Suggestions: suggestions,
	}
}

// ValidationError creates a validation_error Result.
func ValidationError(message string, details map[string]any, suggestions ...string) Result {
	if len(suggestions) == 0 {
		suggestions = []string{"Check input format and try again"}
	}
	return Fail(KindValidationError, message, details, suggestions...)
}

// NotFound creates a not_found Result with the canonical message.
func NotFound(resource, id string, suggestions ...string) Result {
	if len(suggestions) == 0 {
		suggestions = []string{"Verify the " + lower(resource) + " ID and try again"}
	}
	return Fail(KindNotFound,
		resource+" '"+id+"' not found",
		map[string]any{"resource": resource, "id": id},
		suggestions...,
	)
}

// AlreadyExists creates an already_exists Result with the canonical message.
func AlreadyExists(resource, identifier string, suggestions ...string) Result {
	if len(suggestions) == 0 {
		suggestions = []string{"Use a different " + lower(resource) + " identifier"}
	}
	return Fail(KindAlreadyExists,
		resource+" '"+identifier+"' already exists",
		map[string]any{"resource": resource, "identifier": identifier},
		suggestions...,
	)
}

// BusinessRuleViolation creates a business_rule_violation Result. The rule
// name is merged into Details under "rule".
func BusinessRuleViolation(rule, message string, details map[string]any, suggestions ...string) Result {
	merged := make(map[string]any, len(details)+1)
	for k, v := range details {
		merged[k] = v
	}
	merged["rule"] = rule
	return Fail(KindBusinessRuleViolation, message, merged, suggestions...)
}

// DependencyError creates a dependency_error Result.
func DependencyError(dependency, message string, suggestions ...string) Result {
	if len(suggestions) == 0 {
		suggestions = []string{"Ensure " + dependency + " is available and properly configured"}
	}
	return Fail(KindDependencyError, message,
		map[string]any{"dependency": dependency},
		suggestions...,
	)
}

// OperationFailed wraps an unexpected failure of a named operation. The
// operation name is merged into Details under "operation".
func OperationFailed(operation, reason string, suggestions ...string) Result {
	return Fail(KindOperationFailed,
		"Operation '"+operation+"' failed: "+reason,
		map[string]any{"operation": operation},
		suggestions...,
	)
}

// Unauthorized creates an unauthorized Result.
func Unauthorized(message string, suggestions ...string) Result {
	if message == "" {
		message = "Unauthorized access"
	}
	if len(suggestions) == 0 {
		suggestions = []string{"Check authentication credentials"}
	}
	return Fail(KindUnauthorized, message, nil, suggestions...)
}

// Forbidden creates a forbidden Result.
func Forbidden(resource, action string, suggestions ...string) Result {
	if len(suggestions) == 0 {
		suggestions = []string{"Check user permissions"}
	}
	return Fail(KindForbidden,
		"Access forbidden: Cannot "+action+" "+resource,
		map[string]any{"resource": resource, "action": action},
		suggestions...,
	)
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
