package smile

// Error codes
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeInvalidOptions = "INVALID_OPTIONS"
)

// PromptResponse - POST /api/smile/prompt 응답
type PromptResponse struct {
	Success          bool        `json:"success"`
	RequestID        string      `json:"requestId,omitempty"`
	Prompt           string      `json:"prompt,omitempty"`
	Arch             string      `json:"arch,omitempty"`
	TeethCount       string      `json:"teethCount,omitempty"`
	PreservationMode string      `json:"preservationMode,omitempty"`
	DirectiveCount   int         `json:"directiveCount"`
	Directives       []Directive `json:"directives,omitempty"`
	Errors           []string    `json:"errors,omitempty"`
	ErrorMessage     string      `json:"errorMessage,omitempty"`
	ErrorCode        string      `json:"errorCode,omitempty"`
}

// ValidateResponse - POST /api/smile/validate 응답
type ValidateResponse struct {
	RequestID string `json:"requestId,omitempty"`
	ValidationResult
}

// Prepared is what gets handed to the generation client: the document plus
// the resolved scope for auditing.
type Prepared struct {
	RequestID string
	Compilation
}

func newPromptResponse(p *Prepared) PromptResponse {
	return PromptResponse{
		Success:          true,
		RequestID:        p.RequestID,
		Prompt:           p.Document,
		Arch:             p.Context.Arch,
		TeethCount:       p.Context.TeethCount,
		PreservationMode: p.Context.PreservationMode,
		DirectiveCount:   len(p.Modifications()),
		Directives:       p.Directives,
	}
}
