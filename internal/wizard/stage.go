package wizard

// Stage is one page of the claim wizard
type Stage int

const (
	StageIncident Stage = iota + 1
	StageVehicle
	StageSpecifics
	StageEvidence
	StageReview
)

// Stages in order
var Stages = []Stage{StageIncident, StageVehicle, StageSpecifics, StageEvidence, StageReview}

func (s Stage) Valid() bool { return s >= StageIncident && s <= StageReview }

func (s Stage) Title() string {
	switch s {
	case StageIncident:
		return "Incident Details"
	case StageVehicle:
		return "Vehicle & Policy"
	case StageSpecifics:
		return "Accident Specifics"
	case StageEvidence:
		return "Damage Evidence"
	case StageReview:
		return "Review & Submit"
	default:
		return ""
	}
}
