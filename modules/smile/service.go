package smile

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"smile-design-server/modules/common/config"
)

type Service struct {
	logPrompts bool
}

// NewService - Service 생성
func NewService(cfg *config.Config) *Service {
	svc := &Service{}
	if cfg != nil {
		svc.logPrompts = cfg.LogPrompts
	}
	return svc
}

type requestIDKey struct{}

// WithRequestID attaches a request ID used to tag log lines.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID on ctx, or a fresh one.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// Validate - 옵션 검증만 수행
func (s *Service) Validate(ctx context.Context, opts OptionSet) ValidationResult {
	requestID := RequestIDFrom(ctx)
	result := Validate(opts)
	if result.IsValid {
		log.Printf("✅ [Smile] %s options valid (%d keys)", requestID, len(opts))
	} else {
		log.Printf("⚠️ [Smile] %s options invalid: %s", requestID, strings.Join(result.Errors, "; "))
	}
	return result
}

// Prepare validates first and compiles only a valid option set. On failure the
// returned *Prepared is nil and the result lists every problem.
func (s *Service) Prepare(ctx context.Context, opts OptionSet) (*Prepared, ValidationResult) {
	requestID := RequestIDFrom(ctx)
	snapshot := opts.Clone()

	result := Validate(snapshot)
	if !result.IsValid {
		log.Printf("⚠️ [Smile] %s rejected: %s", requestID, strings.Join(result.Errors, "; "))
		return nil, result
	}

	compiled := Compile(snapshot)
	log.Printf("🦷 [Smile] %s arch=%s teeth=%s preservation=%s directives=%d",
		requestID, compiled.Context.Arch, compiled.Context.TeethCount,
		compiled.Context.PreservationMode, len(compiled.Directives))
	for i, d := range compiled.Directives {
		log.Printf("   %d. [%s] %s", i+1, d.Feature, truncateString(d.Text, 60))
	}
	if s.logPrompts {
		log.Printf("📝 [Smile] %s prompt:\n%s", requestID, compiled.Document)
	}

	return &Prepared{RequestID: requestID, Compilation: compiled}, result
}

// truncateString - 로그용 문자열 자르기
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
