package task

const (
	DefaultRetryCount     = 3
	DefaultTimeoutSeconds = 86400
	DefaultOwnerEmail     = "dev@infmonkeys.com"
)

// Definition describes task metadata registered with the orchestrator.
type Definition struct {
	Name           string   `json:"name"`
	InputKeys      []string `json:"inputKeys"`
	OutputKeys     []string `json:"outputKeys"`
	RetryCount     int      `json:"retryCount"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
	OwnerEmail     string   `json:"ownerEmail"`
}

// DefinitionOption customises a Definition derived from a Block.
type DefinitionOption func(d *Definition)

// WithRetryCount overrides the retry count.
func WithRetryCount(count int) DefinitionOption {
	return func(d *Definition) { d.RetryCount = count }
}

// WithTimeoutSeconds overrides the task timeout.
func WithTimeoutSeconds(seconds int) DefinitionOption {
	return func(d *Definition) { d.TimeoutSeconds = seconds }
}

// WithOwnerEmail overrides the owner email.
func WithOwnerEmail(email string) DefinitionOption {
	return func(d *Definition) { d.OwnerEmail = email }
}

// NewDefinition derives a task definition from a capability block.
func NewDefinition(block Block, opts ...DefinitionOption) *Definition {
	ret := &Definition{
		Name:           block.Name(),
		InputKeys:      block.InputNames(),
		OutputKeys:     block.OutputNames(),
		RetryCount:     DefaultRetryCount,
		TimeoutSeconds: DefaultTimeoutSeconds,
		OwnerEmail:     DefaultOwnerEmail,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
