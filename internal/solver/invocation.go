package solver

// Invocation is one solver run: the binary plus its inputs and policy flags.
type Invocation struct {
	Solver string
	Rules  []string
	Facts  []string
	Query  string
	Flags  []string

	// Leading flags go before every input (the quiet flag in asp and
	// pass-through runs).
	Leading []string
}

// Args returns the argument vector in solver order:
// leading flags, rule files, fact files, the query, then policy flags.
func (inv Invocation) Args() []string {
	args := make([]string, 0, len(inv.Leading)+len(inv.Rules)+len(inv.Facts)+len(inv.Flags)+1)
	args = append(args, inv.Leading...)
	args = append(args, inv.Rules...)
	args = append(args, inv.Facts...)
	if inv.Query != "" {
		args = append(args, inv.Query)
	}
	return append(args, inv.Flags...)
}

// Command converts the invocation into an executable Command.
func (inv Invocation) Command() Command {
	return Command{Binary: inv.Solver, Arguments: inv.Args()}
}
