package diag

// Severity ranks how serious a diagnostic is. Ordering is load-bearing:
// Bag's HasErrors/HasWarnings compare with >=, so more severe values must
// compare larger.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}
