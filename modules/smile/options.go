package smile

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"smile-design-server/modules/common/fallback"
)

// Option keys accepted from the request layer.
const (
	KeyArch                = "arch"
	KeyTeethCount          = "teeth_count"
	KeyNumberOfTeeth       = "number_of_teeth"
	KeyBrighten            = "brighten"
	KeyToothShape          = "tooth_shape"
	KeyPreservationMode    = "tooth_preservation_mode"
	KeyGummySmileSeverity  = "gummy_smile_severity"
	KeyIncisorMode         = "incisor_improvement_mode"
	KeyCrowding            = "correct_crowding_with_alignment"
	KeyWidenUpper          = "widen_upper_teeth"
	KeyWidenLower          = "widen_lower_teeth"
	KeyCloseSpaces         = "close_spaces_evenly"
	KeyReplaceMissing      = "replace_missing_teeth"
	KeyReduceGummySmile    = "reduce_gummy_smile"
	KeyImproveIncisorShape = "improve_incisor_shape"
	KeyImproveGumRecession = "improve_gum_recession"
	KeyCorrectUnderbite    = "correct_underbite"
	KeyCorrectOverbite     = "correct_overbite"
	KeyAddCharacterisation = "add_characterisation"
	KeyLegacyIncisalEdges  = "improve_shape_of_incisal_edges"
)

// booleanKeys - 검증 순서대로 나열 (legacy alias는 마지막)
var booleanKeys = []string{
	KeyWidenUpper,
	KeyWidenLower,
	KeyCloseSpaces,
	KeyReplaceMissing,
	KeyReduceGummySmile,
	KeyImproveIncisorShape,
	KeyImproveGumRecession,
	KeyCorrectUnderbite,
	KeyCorrectOverbite,
	KeyAddCharacterisation,
	KeyLegacyIncisalEdges,
}

// scalarKeys - boolean 이외의 알려진 옵션 키
var scalarKeys = []string{
	KeyArch,
	KeyTeethCount,
	KeyNumberOfTeeth,
	KeyBrighten,
	KeyToothShape,
	KeyPreservationMode,
	KeyGummySmileSeverity,
	KeyIncisorMode,
	KeyCrowding,
}

func isKnownKey(key string) bool {
	return contains(scalarKeys, key) || contains(booleanKeys, key)
}

// Arch values.
const (
	ArchUpper = "upper"
	ArchLower = "lower"
	ArchBoth  = "both"
)

// Preservation modes.
const (
	PreserveComplete  = "complete"
	PreserveEdgesOnly = "edges_only"
	PreserveCustom    = "custom"
)

// Teeth count bounds and the full-arch sentinel.
const (
	MinTeeth          = 2
	MaxTeeth          = 10
	DefaultTeethCount = "6"
	FullArch          = "full arch"
)

var (
	validArches            = []string{ArchUpper, ArchLower, ArchBoth}
	validPreservationModes = []string{PreserveComplete, PreserveEdgesOnly, PreserveCustom}
	validBrightenLevels    = []string{"subtle", "natural", "super_natural"}
	validToothShapes       = []string{"maintain_existing", "maintain", "square", "oval", "squoval"}
	validSeverities        = []string{"mild", "moderate", "severe"}
	validIncisorModes      = []string{"contouring", "reshape"}
)

// OptionSet is the flat key -> raw value bag received from the request layer.
// A missing key means the option is absent.
type OptionSet map[string]string

// OptionsFromValues takes the first value of every form field.
func OptionsFromValues(values url.Values) OptionSet {
	opts := make(OptionSet, len(values))
	for k, v := range values {
		if len(v) > 0 {
			opts[k] = v[0]
		}
	}
	return opts
}

// OptionsFromMap converts a decoded JSON object. Native booleans become
// "true"/"false", numbers are written in base 10 and nulls are dropped.
// Objects or arrays under a known option key are rejected; under unknown
// keys they are ignored.
func OptionsFromMap(m map[string]any) (OptionSet, error) {
	opts := make(OptionSet, len(m))
	var malformed []string
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			opts[k] = val
		case bool:
			opts[k] = strconv.FormatBool(val)
		case float64:
			opts[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			if isKnownKey(k) {
				malformed = append(malformed, k)
			}
		}
	}
	if len(malformed) > 0 {
		sort.Strings(malformed)
		return nil, fmt.Errorf("options must be strings, numbers or booleans: %s", strings.Join(malformed, ", "))
	}
	return opts, nil
}

// Clone returns an independent copy.
func (o OptionSet) Clone() OptionSet {
	out := make(OptionSet, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Has reports whether the key is present at all.
func (o OptionSet) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// lower - 값을 소문자로 (없으면 빈 문자열)
func (o OptionSet) lower(key string) string {
	return strings.ToLower(strings.TrimSpace(o[key]))
}

// flag reports whether a boolean option is set to true.
func (o OptionSet) flag(key string) bool {
	return fallback.SafeBool(o[key], false)
}

// rawTeethCount - teeth_count가 우선, 없으면 number_of_teeth
func (o OptionSet) rawTeethCount() string {
	return fallback.FirstNonEmpty(o[KeyTeethCount], o[KeyNumberOfTeeth])
}

// NormalizedContext holds the resolved, always-valid view of the scope options.
type NormalizedContext struct {
	Arch             string `json:"arch"`
	TeethCount       string `json:"teethCount"`
	PreservationMode string `json:"preservationMode"`
}

// Normalize resolves arch, teeth count and preservation mode. Values that are
// missing or out of range fall back to their defaults instead of failing.
func Normalize(opts OptionSet) NormalizedContext {
	return NormalizedContext{
		Arch:             fallback.OneOf(opts[KeyArch], validArches, ArchUpper),
		TeethCount:       resolveTeethCount(opts.rawTeethCount()),
		PreservationMode: fallback.OneOf(opts[KeyPreservationMode], validPreservationModes, PreserveComplete),
	}
}

func resolveTeethCount(raw string) string {
	if isFullArch(raw) {
		return FullArch
	}
	n, ok := fallback.IntInRange(raw, MinTeeth, MaxTeeth)
	if !ok {
		return DefaultTeethCount
	}
	return strconv.Itoa(n)
}

func isFullArch(raw string) bool {
	return raw == "full" || raw == "full_arch"
}

// ArchText - 프롬프트에 들어갈 아치 설명
func (c NormalizedContext) ArchText() string {
	if c.Arch == ArchBoth {
		return "both upper and lower arches"
	}
	return c.Arch + " arch"
}

// NonTargetText names the side the checklist must confirm was left alone.
func (c NormalizedContext) NonTargetText() string {
	switch c.Arch {
	case ArchUpper:
		return ArchLower
	case ArchLower:
		return ArchUpper
	}
	return "non-target"
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
