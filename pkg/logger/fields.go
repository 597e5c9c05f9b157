package logger

import (
	"strconv"
	"time"
)

// Fields is a fluent structured-field builder, grounded on the teacher's
// logging.Fields contract (component + operation + resource + duration_ms
// etc), flattened here into key/value pairs so it can be spread straight
// into the Logger interface's variadic kv args.
type Fields map[string]any

func NewFields() Fields {
	return Fields{}
}

func (f Fields) Component(name string) Fields {
	f["component"] = name
	return f
}

func (f Fields) Operation(name string) Fields {
	f["operation"] = name
	return f
}

func (f Fields) Resource(resourceType, name string) Fields {
	f["resource_type"] = resourceType
	if name != "" {
		f["resource_name"] = name
	}
	return f
}

func (f Fields) Duration(d time.Duration) Fields {
	f["duration_ms"] = d.Milliseconds()
	return f
}

func (f Fields) Error(err error) Fields {
	if err != nil {
		f["error"] = err.Error()
	}
	return f
}

func (f Fields) Count(n int) Fields {
	f["count"] = n
	return f
}

func (f Fields) Custom(key string, value any) Fields {
	f[key] = value
	return f
}

// KV flattens the fields into an alternating key/value slice suitable for
// Logger.Info/Warn/Error's variadic args.
func (f Fields) KV() []any {
	out := make([]any, 0, len(f)*2)
	for k, v := range f {
		out = append(out, k, v)
	}
	return out
}

// WorkItemFields builds the standard field set for work-item-store log
// lines: component "workitem", the operation, and the work item's ID.
func WorkItemFields(operation string, id int) Fields {
	return NewFields().Component("workitem").Operation(operation).Resource("work_item", strconv.Itoa(id))
}
