package relevance

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"owldlv/internal/failure"
	"owldlv/internal/logging"
	"owldlv/internal/rules"
)

// relevanceProgram closes the query predicates under rule dependencies.
const relevanceProgram = `
Decl depends(Head, Body).
Decl query(Pred).

relevant(P) :- query(P).
relevant(B) :- relevant(H), depends(H, B).
`

var (
	dependsSym  = ast.PredicateSym{Symbol: "depends", Arity: 2}
	querySym    = ast.PredicateSym{Symbol: "query", Arity: 1}
	relevantSym = ast.PredicateSym{Symbol: "relevant", Arity: 1}
)

// MangleAnalyzer computes relevance in process: rule files are reduced to
// head/body dependency edges and a small Mangle program computes the
// predicates reachable from the query.
type MangleAnalyzer struct {
	programInfo *analysis.ProgramInfo
	initErr     error
}

// NewMangleAnalyzer compiles the relevance program.
func NewMangleAnalyzer() *MangleAnalyzer {
	a := &MangleAnalyzer{}
	unit, err := parse.Unit(strings.NewReader(relevanceProgram))
	if err != nil {
		a.initErr = fmt.Errorf("parse relevance program: %w", err)
		return a
	}
	a.programInfo, err = analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		a.initErr = fmt.Errorf("analyze relevance program: %w", err)
	}
	return a
}

// Relevant returns the query predicates and everything they depend on.
func (a *MangleAnalyzer) Relevant(ctx context.Context, ruleFiles []string, queryFile string) (PredicateSet, error) {
	const op = "relevance"

	if a.initErr != nil {
		return nil, failure.Wrap(failure.KindInternal, op, a.initErr)
	}

	timer := logging.StartTimer(logging.CategoryRelevance, "MangleAnalyzer.Relevant")
	defer timer.Stop()

	store := factstore.NewSimpleInMemoryStore()

	edges := 0
	for _, path := range ruleFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := readFile(path)
		if err != nil {
			return nil, err
		}
		deps, err := rules.Dependencies(content)
		if err != nil {
			return nil, failure.Wrap(failure.KindParse, path, err)
		}
		for _, d := range deps {
			store.Add(ast.Atom{Predicate: dependsSym, Args: []ast.BaseTerm{ast.String(d.Head), ast.String(d.Body)}})
			edges++
		}
	}

	content, err := readFile(queryFile)
	if err != nil {
		return nil, err
	}
	queried, err := rules.QueryPredicates(content)
	if err != nil {
		return nil, failure.Wrap(failure.KindParse, queryFile, err)
	}
	for _, p := range queried {
		store.Add(ast.Atom{Predicate: querySym, Args: []ast.BaseTerm{ast.String(p)}})
	}

	stats, err := mengine.EvalProgramWithStats(a.programInfo, store)
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}
	logging.RelevanceDebug("mangle eval: %d edges, %d query predicates, stats=%+v", edges, len(queried), stats)

	set := make(PredicateSet)
	err = store.GetFacts(ast.NewQuery(relevantSym), func(atom ast.Atom) error {
		if c, ok := atom.Args[0].(ast.Constant); ok {
			set.Add(c.Symbol)
		}
		return nil
	})
	if err != nil {
		return nil, failure.Wrap(failure.KindInternal, op, err)
	}

	logging.Relevance("Mangle analyzer found %d relevant predicates", set.Len())
	return set, nil
}
