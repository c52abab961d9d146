// Package analyzer optimizes lowered IR trees by repeatedly applying
// batches of rewrite rules until a fixed point is reached.
package analyzer

import (
	"fmt"
	"os"
	"strings"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/src-d/go-errors.v1"

	"github.com/quarrydb/quarry/sql"
)

const debugAnalyzerKey = "DEBUG_ANALYZER"

const maxOptimizeIterations = 1000

// ErrMaxAnalysisIters is thrown when the optimization iterations are exceeded
var ErrMaxAnalysisIters = errors.NewKind("exceeded max optimization iterations (%d)")

// RuleFunc is the function to be applied in a rule.
type RuleFunc func(*sql.Context, *Analyzer, sql.Node) (sql.Node, error)

// Rule to transform nodes.
type Rule struct {
	// Name of the rule.
	Name string
	// Apply transforms a node.
	Apply RuleFunc
}

// Builder provides an easy way to generate Analyzers with custom rules
// and options.
type Builder struct {
	preOptimizeRules  []Rule
	postOptimizeRules []Rule
	debug             bool
	verbose           bool
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithDebug activates debug on the Analyzer.
func (ab *Builder) WithDebug() *Builder {
	ab.debug = true
	return ab
}

// WithVerbose activates verbose output on the Analyzer.
func (ab *Builder) WithVerbose() *Builder {
	ab.verbose = true
	return ab
}

// AddPreOptimizeRule adds a new rule to run before the standard rules.
func (ab *Builder) AddPreOptimizeRule(name string, fn RuleFunc) *Builder {
	ab.preOptimizeRules = append(ab.preOptimizeRules, Rule{name, fn})
	return ab
}

// AddPostOptimizeRule adds a new rule to run after the standard rules.
func (ab *Builder) AddPostOptimizeRule(name string, fn RuleFunc) *Builder {
	ab.postOptimizeRules = append(ab.postOptimizeRules, Rule{name, fn})
	return ab
}

// Build creates a new Analyzer from the builder configuration.
func (ab *Builder) Build() *Analyzer {
	_, debug := os.LookupEnv(debugAnalyzerKey)
	batches := []*Batch{
		{
			Desc:       "pre-optimizer",
			Iterations: maxOptimizeIterations,
			Rules:      ab.preOptimizeRules,
		},
		{
			Desc:       "once-before",
			Iterations: 1,
			Rules:      OnceBeforeDefault,
		},
		{
			Desc:       "default-rules",
			Iterations: maxOptimizeIterations,
			Rules:      DefaultRules,
		},
		{
			Desc:       "post-optimizer",
			Iterations: maxOptimizeIterations,
			Rules:      ab.postOptimizeRules,
		},
	}

	return &Analyzer{
		Debug:    debug || ab.debug,
		Verbose:  ab.verbose,
		debugCtx: make([]string, 0),
		Batches:  batches,
	}
}

// Analyzer optimizes IR trees by applying rule batches until each batch
// converges.
type Analyzer struct {
	// Whether to log various debugging messages
	Debug bool
	// Whether to output the tree at each step of the optimizer
	Verbose  bool
	debugCtx []string
	// Batches of Rules to apply.
	Batches []*Batch
}

// NewDefault creates a default Analyzer instance with all default Rules
// and configuration. To add custom rules, the easiest way is use the
// Builder.
func NewDefault() *Analyzer {
	return NewBuilder().Build()
}

// Log prints an INFO message to stdout with the given message and args
// if the analyzer is in debug mode.
func (a *Analyzer) Log(msg string, args ...interface{}) {
	if a != nil && a.Debug {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			logrus.Infof("%s: "+msg, append([]interface{}{ctx}, args...)...)
		} else {
			logrus.Infof(msg, args...)
		}
	}
}

// LogNode prints the node given if Verbose logging is enabled.
func (a *Analyzer) LogNode(n sql.Node) {
	if a != nil && n != nil && a.Verbose {
		if len(a.debugCtx) > 0 {
			ctx := strings.Join(a.debugCtx, "/")
			fmt.Printf("%s: %s", ctx, n.String())
		} else {
			fmt.Printf("%s", n.String())
		}
	}
}

// PushDebugContext pushes the given context string onto the context
// stack, to use when logging debug messages.
func (a *Analyzer) PushDebugContext(msg string) {
	if a != nil {
		a.debugCtx = append(a.debugCtx, msg)
	}
}

// PopDebugContext pops a context message off the context stack.
func (a *Analyzer) PopDebugContext() {
	if a != nil && len(a.debugCtx) > 0 {
		a.debugCtx = a.debugCtx[:len(a.debugCtx)-1]
	}
}

// Optimize applies every batch to the node until each converges.
func (a *Analyzer) Optimize(ctx *sql.Context, n sql.Node) (sql.Node, error) {
	span, ctx := ctx.Span("optimize", opentracing.Tags{
		"plan": n.String(),
	})
	defer span.Finish()

	prev := n
	var err error
	a.Log("starting optimization of node of type: %T", n)
	for _, batch := range a.Batches {
		a.PushDebugContext(batch.Desc)
		prev, err = batch.Eval(ctx, a, prev)
		a.PopDebugContext()
		if ErrMaxAnalysisIters.Is(err) {
			a.Log(err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return prev, err
}
