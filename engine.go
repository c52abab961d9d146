// Package quarry compiles logical query plans into a normalized,
// backend-agnostic IR. Compilation runs in two stages: the planbuilder
// lowers the plan, merging subtrees that read the same data, and the
// analyzer rewrites the result to a fixed point.
package quarry

import (
	"github.com/sirupsen/logrus"

	"github.com/quarrydb/quarry/sql"
	"github.com/quarrydb/quarry/sql/analyzer"
	"github.com/quarrydb/quarry/sql/planbuilder"
)

// Engine ties the compiler stages together.
type Engine struct {
	Builder  *planbuilder.Builder
	Analyzer *analyzer.Analyzer

	lister planbuilder.PathLister
}

// Option configures an Engine.
type Option func(*Engine)

// WithPathLister sets the namespace lister used to resolve Read paths
// into stored collections.
func WithPathLister(l planbuilder.PathLister) Option {
	return func(e *Engine) {
		e.lister = l
	}
}

// WithAnalyzer replaces the default analyzer.
func WithAnalyzer(a *analyzer.Analyzer) Option {
	return func(e *Engine) {
		e.Analyzer = a
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	var bopts []planbuilder.BuilderOption
	if e.lister != nil {
		bopts = append(bopts, planbuilder.WithPathLister(e.lister))
	}
	e.Builder = planbuilder.New(bopts...)

	if e.Analyzer == nil {
		e.Analyzer = analyzer.NewDefault()
	}
	return e
}

// Compile lowers a logical plan into IR and optimizes it.
func (e *Engine) Compile(ctx *sql.Context, plan sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("compile")
	defer span.Finish()

	lowered, err := e.lower(ctx, plan)
	if err != nil {
		return nil, err
	}
	return e.Analyzer.Optimize(ctx, lowered)
}

func (e *Engine) lower(ctx *sql.Context, plan sql.Node) (sql.Node, error) {
	lowered, err := e.Builder.Lower(ctx, plan)
	if err == nil {
		return lowered, nil
	}
	if e.lister == nil {
		return nil, err
	}

	// Namespace resolution can fail when the backing store is
	// unreachable. Lowering every path as projection from the root
	// still yields a correct tree, so retry without the lister.
	logrus.WithError(err).Debug("retrying lowering with pure projection paths")
	lowered, ferr := planbuilder.New().Lower(ctx, plan)
	if ferr != nil {
		return nil, sql.ErrPlanningFailed.Wrap(err, ferr.Error())
	}
	return lowered, nil
}
