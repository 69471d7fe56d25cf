package usecase

// ActionOutcome describes how completely a state-changing action finished.
// A degraded action committed its primary write but a follow-up step failed.
type ActionOutcome struct {
	Degraded bool     `json:"degraded"`
	Warnings []string `json:"warnings,omitempty"`
}

func (o *ActionOutcome) degrade(warning string) {
	o.Degraded = true
	o.Warnings = append(o.Warnings, warning)
}
