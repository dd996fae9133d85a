package pipeline

import (
	"owldlv/internal/failure"
	"owldlv/internal/importer"
)

// Strategy selects how an obqa query is answered.
type Strategy int

const (
	// PChase runs the existential solver on the full rules and facts.
	PChase Strategy = iota + 1

	// SkDLV skolemizes the rules, prunes facts to the relevant predicates
	// and runs the plain solver.
	SkDLV

	// DataRewClip delegates the rule transformation to a registered Rewriter.
	DataRewClip
)

func (s Strategy) String() string {
	switch s {
	case PChase:
		return "pchase"
	case SkDLV:
		return "skdlv"
	case DataRewClip:
		return "datarewclip"
	default:
		return ""
	}
}

// ParseStrategy maps a --run value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "pchase":
		return PChase, nil
	case "skdlv":
		return SkDLV, nil
	case "datarewclip":
		return DataRewClip, nil
	default:
		return 0, failure.New(failure.KindConfig, "run", "approach not known")
	}
}

// Mode is the top-level execution mode.
type Mode int

const (
	OBQA Mode = iota + 1
	ClearWorkspace
	ASP
	LoadResults
)

func (m Mode) String() string {
	switch m {
	case OBQA:
		return "obqa"
	case ClearWorkspace:
		return "clear-workspace"
	case ASP:
		return "asp"
	case LoadResults:
		return "load-results"
	default:
		return ""
	}
}

// ParseMode maps a --mode value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "obqa":
		return OBQA, nil
	case "clear-workspace":
		return ClearWorkspace, nil
	case "asp":
		return ASP, nil
	case "load-results":
		return LoadResults, nil
	default:
		return 0, failure.New(failure.KindConfig, "mode", "execution mode not known")
	}
}

// Formalism is the --import input format.
type Formalism = importer.Formalism

const (
	OWL = importer.OWL
	DPM = importer.DPM
)

// ParseFormalism maps an --import value to a Formalism.
func ParseFormalism(s string) (Formalism, error) {
	return importer.ParseFormalism(s)
}

// Policy is the asp-mode reasoning policy.
type Policy int

const (
	Cautious Policy = iota + 1
	Brave
)

func (p Policy) String() string {
	switch p {
	case Cautious:
		return "cautious"
	case Brave:
		return "brave"
	default:
		return ""
	}
}

// PolicyFrom resolves the --cautious/--brave pair.
func PolicyFrom(cautious, brave bool) (Policy, error) {
	switch {
	case cautious && brave:
		return 0, failure.New(failure.KindConfig, "asp", "multiple reasoning strategies")
	case cautious:
		return Cautious, nil
	case brave:
		return Brave, nil
	default:
		return 0, failure.New(failure.KindConfig, "asp", "no reasoning strategy (neither brave nor cautious)")
	}
}
