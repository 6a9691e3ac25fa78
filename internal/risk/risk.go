package risk

type Posture string

const (
	Low      Posture = "LOW"
	Moderate Posture = "MODERATE"
	High     Posture = "HIGH"
	Critical Posture = "CRITICAL"
)

type Rating struct {
	Compliance float64 `json:"compliance"`
	Posture    Posture `json:"posture"`
}

// FromCompliance maps the percentage of passed governance checks to a posture.
func FromCompliance(compliance float64) Rating {
	p := Critical
	switch {
	case compliance >= 90:
		p = Low
	case compliance >= 70:
		p = Moderate
	case compliance >= 50:
		p = High
	default:
		p = Critical
	}
	return Rating{Compliance: compliance, Posture: p}
}
