package validate

// Outcome is the terminal state of a validate-fix run.
type Outcome string

const (
	// OutcomeConverged means the final scan reported zero findings.
	OutcomeConverged Outcome = "converged"
	// OutcomeExhausted means findings remain after every affected file
	// spent its attempt budget. Not a crash; a reportable end state.
	OutcomeExhausted Outcome = "exhausted"
)

// FileResult captures the per-file end state of a fix run.
type FileResult struct {
	FilePath   string    `json:"file_path"`
	Attempts   int       `json:"attempts"`
	Exhausted  bool      `json:"exhausted"`
	Unresolved []Finding `json:"unresolved,omitempty"`
}

// FixReport is the user-visible result of the validate-fix loop. A run that
// ends exhausted reports the exact unresolved findings per file so a human
// can intervene.
type FixReport struct {
	Outcome Outcome      `json:"outcome"`
	Rounds  int          `json:"rounds"`
	Files   []FileResult `json:"files,omitempty"`
}

// Unresolved returns the results that still carry findings.
func (r *FixReport) Unresolved() []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if len(f.Unresolved) > 0 {
			out = append(out, f)
		}
	}
	return out
}
