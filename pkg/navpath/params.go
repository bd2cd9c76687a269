package navpath

// Mode selects how UpdateParams treats the existing query block.
type Mode int

const (
	// Replace drops every existing parameter.
	Replace Mode = iota
	// Merge keeps parameters not named by the operations ("sticky" controls
	// such as pagination or a period filter).
	Merge
)

// ParamOp mutates a query block.
type ParamOp func(params map[string]string)

// Set assigns a parameter.
func Set(key, value string) ParamOp {
	return func(params map[string]string) {
		params[key] = value
	}
}

// Unset removes a parameter.
func Unset(key string) ParamOp {
	return func(params map[string]string) {
		delete(params, key)
	}
}

func apply(params map[string]string, ops []ParamOp) {
	for _, op := range ops {
		if op != nil {
			op(params)
		}
	}
}
