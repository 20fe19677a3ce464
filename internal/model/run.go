package model

// RunOutcome is the per-lead result of one scheduler pass.
type RunOutcome string

const (
	RunOutcomeSuccess RunOutcome = "success"
	RunOutcomeError   RunOutcome = "error"
)

type RunResult struct {
	Lead      string     `json:"lead"`
	Status    RunOutcome `json:"status"`
	Simulated bool       `json:"simulated,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// RunSummary is returned to whatever triggered the run; nothing else
// consumes it.
type RunSummary struct {
	Processed int         `json:"processed"`
	Results   []RunResult `json:"results"`
}

// ImportError records one rejected import row.
type ImportError struct {
	Lead  LeadImportRow `json:"lead"`
	Error string        `json:"error"`
}

// ImportSummary is the outcome of a bulk import: rows upserted plus the
// per-row failures. A batch never fails as a whole on row errors.
type ImportSummary struct {
	Success int           `json:"success"`
	Errors  []ImportError `json:"errors"`
}
