package smile

import (
	"fmt"
	"strings"

	"smile-design-server/modules/common/fallback"
)

// Feature tags the builder that produced a directive.
type Feature string

const (
	FeatureBrighten         Feature = "brighten"
	FeatureWidenUpper       Feature = "widen_upper"
	FeatureWidenLower       Feature = "widen_lower"
	FeatureSpacing          Feature = "spacing"
	FeatureAlignment        Feature = "alignment"
	FeatureMissingTeeth     Feature = "missing_teeth"
	FeatureGummySmile       Feature = "gummy_smile"
	FeatureIncisorShape     Feature = "incisor_shape"
	FeatureToothShape       Feature = "tooth_shape"
	FeatureCharacterisation Feature = "characterisation"
	FeatureGumRecession     Feature = "gum_recession"
	FeatureUnderbite        Feature = "underbite"
	FeatureOverbite         Feature = "overbite"
	FeaturePreservation     Feature = "preservation"
)

// Directive is one numbered instruction in the compiled document.
type Directive struct {
	Feature Feature `json:"feature"`
	Text    string  `json:"text"`
}

// Compilation is the immutable result of one compile pass.
type Compilation struct {
	Context    NormalizedContext
	Directives []Directive
	Document   string
}

// Texts returns the directive sentences in order.
func (c Compilation) Texts() []string {
	out := make([]string, len(c.Directives))
	for i, d := range c.Directives {
		out[i] = d.Text
	}
	return out
}

// Modifications returns the numbered entries: every directive except the
// closing preservation constraint.
func (c Compilation) Modifications() []Directive {
	mods, _ := splitConstraint(c.Directives)
	return mods
}

// Constraint returns the closing preservation constraint, if one was emitted.
func (c Compilation) Constraint() (Directive, bool) {
	_, closer := splitConstraint(c.Directives)
	if closer == nil {
		return Directive{}, false
	}
	return *closer, true
}

func splitConstraint(directives []Directive) ([]Directive, *Directive) {
	n := len(directives)
	if n > 0 && directives[n-1].Feature == FeaturePreservation {
		return directives[:n-1], &directives[n-1]
	}
	return directives, nil
}

// step pairs a feature with its builder. The order of steps is the order of
// the numbered list in the document.
type step struct {
	feature Feature
	build   func(opts OptionSet, nc NormalizedContext) (string, bool)
}

var steps = []step{
	{FeatureBrighten, buildBrightening},
	{FeatureWidenUpper, flagDirective(KeyWidenUpper, "Increase the width of upper teeth by 10-15% to create fuller appearance")},
	{FeatureWidenLower, flagDirective(KeyWidenLower, "Increase the width of lower teeth by 10-15% proportionally")},
	{FeatureSpacing, flagDirective(KeyCloseSpaces, "Eliminate gaps by redistributing teeth spacing evenly while maintaining natural contact points")},
	{FeatureAlignment, buildAlignment},
	{FeatureMissingTeeth, flagDirective(KeyReplaceMissing, "Fill any visible gaps from missing teeth with anatomically correct replacement teeth matching adjacent tooth morphology")},
	{FeatureGummySmile, buildGummySmile},
	{FeatureIncisorShape, buildIncisorShape},
	{FeatureToothShape, buildToothShape},
	{FeatureCharacterisation, flagDirective(KeyAddCharacterisation, "Add subtle characterization effects: natural specular reflections, enamel opalescence, and controlled chroma variation to enhance realism")},
	{FeatureGumRecession, flagDirective(KeyImproveGumRecession, "Restore gum tissue coverage to the cemento-enamel junction, eliminating exposed roots")},
	{FeatureUnderbite, flagDirective(KeyCorrectUnderbite, "Reposition lower jaw posteriorly to achieve proper overbite relationship (upper teeth 2-3mm in front of lower)")},
	{FeatureOverbite, flagDirective(KeyCorrectOverbite, "Reduce excessive overbite by adjusting upper anterior teeth vertical overlap to ideal 2-3mm")},
	{FeaturePreservation, buildPreservationConstraint},
}

// FeatureOrder lists every feature in the order its directive is emitted.
func FeatureOrder() []Feature {
	out := make([]Feature, len(steps))
	for i, s := range steps {
		out[i] = s.feature
	}
	return out
}

var brightenText = map[string]string{
	"subtle":        "Apply subtle brightening to achieve a natural white shade (1-2 shades lighter)",
	"natural":       "Brighten to a healthy natural white shade (2-3 shades lighter)",
	"super_natural": "Preserve the patient's current tooth shade exactly; do NOT alter natural hue or lightness; maintain existing variations",
}

var crowdingText = map[string]string{
	"mild":     "Straighten mildly crowded teeth by adjusting rotation up to 5-10 degrees",
	"moderate": "Correct moderate crowding by aligning teeth with adjustments up to 15-20 degrees",
	"severe":   "Significantly correct severe crowding with alignment adjustments up to 25-30 degrees",
}

var gumLiftText = map[string]string{
	"mild":     "Reduce visible gum tissue by 2-3mm",
	"moderate": "Reduce visible gum tissue by 4-5mm",
	"severe":   "Reduce visible gum tissue by 6mm or more",
}

var incisorText = map[string]string{
	"contouring": "ONLY perform edge contouring on incisors: smooth and refine incisal edges to create natural contours. DO NOT reshape the overall tooth form.",
	"reshape":    "Redesign incisor shapes completely: create optimal proportions and contours while maintaining natural aesthetics",
}

var toothShapeText = map[string]string{
	"maintain":          "Maintain baseline tooth form without reshaping",
	"maintain_existing": "Maintain baseline tooth form without reshaping",
	"square":            "Modify baseline tooth forms toward square contours (more masculine): emphasize flat incisal edges and slightly broader proximal contacts",
	"oval":              "Modify baseline tooth forms toward oval contours (more feminine): soften incisal edges and round contours",
	"squoval":           "Modify baseline tooth forms to 'squoval', a balanced combination of square and oval features for a natural, modern look",
}

const (
	gumCaveat = "to achieve ideal 1-3mm gum display when smiling. IMPORTANT: Preserve all tooth shapes and facial aspects while adjusting gums only."

	edgeContouringOnly = "ONLY perform edge contouring: smooth and refine incisal edges while maintaining the original facial aspects and overall tooth shapes"

	completeConstraint  = "CRITICAL CONSTRAINT: DO NOT modify any tooth shapes, facial aspects, or contours. Only perform gum modifications if specified. Preserve all existing tooth characteristics."
	edgesOnlyConstraint = "CRITICAL CONSTRAINT: ONLY perform edge contouring. Maintain all facial aspects and overall tooth shapes. Do not reshape or alter the facial surfaces of teeth."

	fallbackInstruction = "Apply conservative cosmetic improvements for a natural, healthy smile."
)

// Compile turns an option set into the ordered directives and the rendered
// document. It never fails: unknown or malformed values fall back to defaults
// or simply produce no directive for their feature.
func Compile(opts OptionSet) Compilation {
	nc := Normalize(opts)

	directives := make([]Directive, 0, len(steps))
	for _, s := range steps {
		if text, ok := s.build(opts, nc); ok {
			directives = append(directives, Directive{Feature: s.feature, Text: text})
		}
	}

	return Compilation{
		Context:    nc,
		Directives: directives,
		Document:   renderDocument(nc, directives),
	}
}

// flagDirective - boolean 플래그 하나에 고정 문장 하나
func flagDirective(key, text string) func(OptionSet, NormalizedContext) (string, bool) {
	return func(opts OptionSet, _ NormalizedContext) (string, bool) {
		return text, opts.flag(key)
	}
}

func lookup(table map[string]string, key string) (string, bool) {
	text, ok := table[key]
	return text, ok
}

func buildBrightening(opts OptionSet, _ NormalizedContext) (string, bool) {
	return lookup(brightenText, opts.lower(KeyBrighten))
}

func buildAlignment(opts OptionSet, _ NormalizedContext) (string, bool) {
	return lookup(crowdingText, opts.lower(KeyCrowding))
}

// buildGummySmile always carries the shape-preservation caveat. Gum work is
// independent of the preservation mode.
func buildGummySmile(opts OptionSet, _ NormalizedContext) (string, bool) {
	if !opts.flag(KeyReduceGummySmile) {
		return "", false
	}
	severity := fallback.OneOf(opts[KeyGummySmileSeverity], validSeverities, "mild")
	return gumLiftText[severity] + " " + gumCaveat, true
}

// buildIncisorShape is not gated by the preservation mode either.
func buildIncisorShape(opts OptionSet, _ NormalizedContext) (string, bool) {
	if !opts.flag(KeyImproveIncisorShape) {
		return "", false
	}
	return lookup(incisorText, fallback.SafeLower(opts[KeyIncisorMode], "contouring"))
}

func buildToothShape(opts OptionSet, nc NormalizedContext) (string, bool) {
	switch nc.PreservationMode {
	case PreserveComplete:
		return "", false
	case PreserveEdgesOnly:
		return edgeContouringOnly, true
	}
	return lookup(toothShapeText, fallback.SafeLower(opts[KeyToothShape], "maintain"))
}

func buildPreservationConstraint(_ OptionSet, nc NormalizedContext) (string, bool) {
	switch nc.PreservationMode {
	case PreserveComplete:
		return completeConstraint, true
	case PreserveEdgesOnly:
		return edgesOnlyConstraint, true
	}
	return "", false
}

// renderDocument - 최종 프롬프트 조립
func renderDocument(nc NormalizedContext, directives []Directive) string {
	archText := nc.ArchText()
	var sb strings.Builder

	sb.WriteString("ROLE: You are an expert dental image manipulation AI specialized in cosmetic dentistry visualization.\n\n")

	sb.WriteString("STRICT MODIFICATION ZONE:\n")
	fmt.Fprintf(&sb, "- Target area: %s ONLY\n", archText)
	switch nc.Arch {
	case ArchUpper:
		sb.WriteString("- DO NOT modify the lower arch in any way\n")
	case ArchLower:
		sb.WriteString("- DO NOT modify the upper arch in any way\n")
	case ArchBoth:
		sb.WriteString("- Modify both upper and lower arches as specified\n")
	}
	if nc.TeethCount == FullArch {
		fmt.Fprintf(&sb, "- Number of teeth to modify: %s\n", FullArch)
	} else {
		fmt.Fprintf(&sb, "- Number of teeth to modify: %s (counting from the central midline outward)\n", nc.TeethCount)
	}
	sb.WriteString("- Leave all other teeth completely unchanged\n\n")

	mods, closer := splitConstraint(directives)
	if len(mods) > 0 {
		sb.WriteString("REQUIRED MODIFICATIONS (apply in this exact order):\n")
		for i, d := range mods {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, d.Text)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString(fallbackInstruction + "\n\n")
	}
	if closer != nil {
		sb.WriteString(closer.Text + "\n\n")
	}

	sb.WriteString("QUALITY CONSTRAINTS:\n" +
		"- Maintain photorealistic quality with natural lighting and texture\n" +
		"- Preserve original tooth anatomy and proportions within normal variation\n" +
		"- Ensure modifications are clinically achievable with modern dentistry\n" +
		"- Keep gum tissue, lips, and facial features completely unchanged unless specified for gum work\n" +
		"- Blend all edits seamlessly with no visible artifacts or discontinuities\n" +
		"- Result must look like a professional before/after from an actual dental practice\n\n")

	sb.WriteString("VERIFICATION CHECKLIST:\n")
	fmt.Fprintf(&sb, "✓ Modified ONLY the %s as specified\n", archText)
	fmt.Fprintf(&sb, "✓ Left the %s teeth unmodified\n", nc.NonTargetText())
	fmt.Fprintf(&sb, "✓ Applied all %d modifications correctly\n", len(mods))
	sb.WriteString("✓ Maintained natural dental aesthetics throughout\n" +
		"✓ Result appears professionally achievable\n\n")

	sb.WriteString("OUTPUT: Return the modified image maintaining original resolution and quality.")

	return sb.String()
}
