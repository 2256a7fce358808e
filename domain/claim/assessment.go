package claim

import "github.com/tidwall/gjson"

// Assessment is the image-model verdict returned as ml_result after processing
type Assessment struct {
	DamageDetected       bool
	Severity             string
	EvidenceStrength     string
	Confidence           float64
	Claimability         string
	Claimable            bool
	Reasoning            []string
	FinalInsuranceReason string
	AnnotatedImages      []string
	WorstDamage          string
}

// ParseAssessment reads an ml_result payload. Fields the model omitted stay zero.
// Returns nil for an empty or non-object payload.
func ParseAssessment(raw []byte) *Assessment {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return nil
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil
	}
	a := &Assessment{
		DamageDetected:       res.Get("damage_detected").Bool(),
		Severity:             res.Get("severity").String(),
		EvidenceStrength:     res.Get("evidence_strength").String(),
		Confidence:           res.Get("confidence").Float(),
		Claimability:         res.Get("claimability").String(),
		Claimable:            res.Get("claimability_bool").Bool(),
		FinalInsuranceReason: res.Get("final_insurance_reason").String(),
		WorstDamage:          res.Get("worst_damage").String(),
		Reasoning:            stringsOf(res.Get("reasoning")),
		AnnotatedImages:      stringsOf(res.Get("annotated_images")),
	}
	return a
}

func stringsOf(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	if !r.IsArray() {
		if s := r.String(); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range r.Array() {
		out = append(out, item.String())
	}
	return out
}
