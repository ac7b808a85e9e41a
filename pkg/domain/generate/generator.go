// Package generate defines the contract for the external generative
// capability. The engine contains no prompt text or model-specific logic,
// only this boundary; mocked generators plug in here for tests.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/validate"
)

// Mode selects between initial generation and finding-driven correction.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeFix    Mode = "fix"
)

// ErrGenerationFailed wraps any provider-level failure, including timeouts.
// The loops treat all of them identically for retry accounting.
var ErrGenerationFailed = errors.New("generation failed")

// Failed wraps err as a generation failure.
func Failed(err error) error {
	return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
}

// Context carries everything a generator needs beyond the unit itself.
// Findings is populated only in fix mode.
type Context struct {
	TargetSchema string
	Findings     []validate.Finding
	Existing     string // current artifact content, fix mode only
}

// Generator produces candidate output artifacts. Implementations are
// stateless per call and may be arbitrarily wrong or slow; the engine only
// relies on the error contract.
type Generator interface {
	ID() string
	Generate(ctx context.Context, unit conversion.Unit, genCtx Context, mode Mode) ([]byte, error)
}
