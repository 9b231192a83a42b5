package smile

import (
	"fmt"

	"smile-design-server/modules/common/fallback"
)

// ValidationResult is handed to the HTTP layer, which decides how to report it.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// enumRule - 열거형 옵션 하나에 대한 검증 규칙
type enumRule struct {
	key     string
	allowed []string
	message string
}

// enumRules run after the arch and teeth count checks, in this order.
var enumRules = []enumRule{
	{KeyBrighten, validBrightenLevels, "Invalid brighten value. Must be: subtle, natural, or super_natural"},
	{KeyToothShape, validToothShapes, "Invalid tooth_shape value. Must be: maintain, square, oval, or squoval"},
	{KeyPreservationMode, validPreservationModes, "Invalid tooth_preservation_mode value. Must be: complete, edges_only, or custom"},
	{KeyGummySmileSeverity, validSeverities, "Invalid gummy_smile_severity value. Must be: mild, moderate, or severe"},
	{KeyIncisorMode, validIncisorModes, "Invalid incisor_improvement_mode value. Must be: contouring or reshape"},
	{KeyCrowding, validSeverities, "Invalid crowding value. Must be: mild, moderate, or severe"},
}

// Validate checks every known option and reports all problems in one pass.
// Unknown keys are ignored. It never modifies opts.
func Validate(opts OptionSet) ValidationResult {
	errs := []string{}

	if opts[KeyArch] != "" && !contains(validArches, opts.lower(KeyArch)) {
		errs = append(errs, "Invalid arch value. Must be: upper, lower, or both")
	}

	if count := opts.rawTeethCount(); count != "" && !isFullArch(count) {
		if _, ok := fallback.IntInRange(count, MinTeeth, MaxTeeth); !ok {
			errs = append(errs, fmt.Sprintf("Invalid teeth count. Must be between %d-%d or \"full\"", MinTeeth, MaxTeeth))
		}
	}

	for _, rule := range enumRules {
		if opts[rule.key] != "" && !contains(rule.allowed, opts.lower(rule.key)) {
			errs = append(errs, rule.message)
		}
	}

	// boolean 플래그는 키가 있으면 반드시 true/false
	for _, key := range booleanKeys {
		if !opts.Has(key) {
			continue
		}
		switch opts.lower(key) {
		case "true", "false":
		default:
			errs = append(errs, fmt.Sprintf("Invalid %s value. Must be: true or false", key))
		}
	}

	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
