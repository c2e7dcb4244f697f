package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the principal identifier under the key "user_id".
// Empty ids produce an empty Attr.
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// Role records a canonical role name under the key "role".
func Role[T ~string](r T) slog.Attr {
	return slog.String("role", string(r))
}

// ProfileID records the permission profile under the key "profile_id".
func ProfileID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("profile_id", id)
}

// Group records an access group under the key "group".
func Group[T ~string](g T) slog.Attr {
	return slog.String("group", string(g))
}

// Resource records a resource name under the key "resource".
func Resource[T ~string](r T) slog.Attr {
	return slog.String("resource", string(r))
}

// Action records an action name under the key "action".
func Action[T ~string](a T) slog.Attr {
	return slog.String("action", string(a))
}

// Decision records an authorization outcome under the key "decision".
func Decision(d string) slog.Attr {
	return slog.String("decision", d)
}

// RequestID records the request identifier under the key "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
