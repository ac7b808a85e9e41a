package ai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

// ResilientGenerator wraps a generator with transport-level retry and a
// hard timeout. This covers flaky connections only; finding-driven retry
// accounting stays with the validate-fix loop, which must observe every
// spent attempt.
type ResilientGenerator struct {
	inner generate.Generator
}

var _ generate.Generator = (*ResilientGenerator)(nil)

func NewResilientGenerator(inner generate.Generator) *ResilientGenerator {
	return &ResilientGenerator{inner: inner}
}

func (g *ResilientGenerator) ID() string {
	return g.inner.ID()
}

func (g *ResilientGenerator) Generate(ctx context.Context, unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	r := retry.New[[]byte](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	t := timeout.New[[]byte](timeout.Config{
		DefaultTimeout: 300 * time.Second,
	})

	return t.Execute(ctx, 300*time.Second, func(ctx context.Context) ([]byte, error) {
		return r.Do(ctx, func(ctx context.Context) ([]byte, error) {
			return g.inner.Generate(ctx, unit, genCtx, mode)
		})
	})
}
