package response

import "github.com/dawudu11/burptracker/internal"

// Envelope is the common success shape. Extra holds the endpoint-specific
// top-level keys the client expects next to the success flag
// (user, group, session, group_stats, data).
type Envelope map[string]interface{}

func Success(keys map[string]interface{}) Envelope {
	env := Envelope{"success": true}
	for k, v := range keys {
		env[k] = v
	}
	return env
}

func Data(data interface{}) Envelope {
	return Success(map[string]interface{}{"data": data})
}

// ErrorBody matches the original client contract: a detail string plus the
// structured error for newer consumers.
type ErrorBody struct {
	Detail string             `json:"detail"`
	Error  *internal.AppError `json:"error,omitempty"`
}

func NewError(code int, msg string) ErrorBody {
	return ErrorBody{Detail: msg, Error: internal.NewAppError(code, msg)}
}
