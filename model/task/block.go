package task

// Block is a capability descriptor announced to the registration service. Its
// schema is owned by that service, so it is kept as a generic document; only
// name, input, output and extra.meta.source are interpreted here.
type Block map[string]interface{}

// Name returns the block name
func (b Block) Name() string {
	name, _ := b["name"].(string)
	return name
}

// InputNames returns names of the declared inputs.
func (b Block) InputNames() []string {
	return b.names("input")
}

// OutputNames returns names of the declared outputs.
func (b Block) OutputNames() []string {
	return b.names("output")
}

func (b Block) names(key string) []string {
	var ret = make([]string, 0)
	switch items := b[key].(type) {
	case []interface{}:
		for _, item := range items {
			if m, ok := item.(map[string]interface{}); ok {
				if name, ok := m["name"].(string); ok {
					ret = append(ret, name)
				}
			}
		}
	case []map[string]interface{}:
		for _, m := range items {
			if name, ok := m["name"].(string); ok {
				ret = append(ret, name)
			}
		}
	}
	return ret
}

// SetSource records the worker announcing the block under extra.meta.source.
func (b Block) SetSource(workerID string) {
	extra, _ := b["extra"].(map[string]interface{})
	if extra == nil {
		extra = map[string]interface{}{}
		b["extra"] = extra
	}
	meta, _ := extra["meta"].(map[string]interface{})
	if meta == nil {
		meta = map[string]interface{}{}
		extra["meta"] = meta
	}
	meta["source"] = workerID
}
