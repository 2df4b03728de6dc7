package llm

// defaultTemperature is used when a caller does not pin the temperature
const defaultTemperature float32 = 0.1

// GenerateOption tunes a single generation call
type GenerateOption func(*generateOptions)

type generateOptions struct {
	temperature  float32
	systemPrompt string
}

// WithTemperature sets the sampling temperature. Extraction pins it to 0.
func WithTemperature(t float32) GenerateOption {
	return func(o *generateOptions) {
		o.temperature = t
	}
}

// WithSystemPrompt sets the system instruction sent ahead of the prompt
func WithSystemPrompt(prompt string) GenerateOption {
	return func(o *generateOptions) {
		o.systemPrompt = prompt
	}
}

func resolveOptions(opts []GenerateOption) generateOptions {
	o := generateOptions{temperature: defaultTemperature}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
