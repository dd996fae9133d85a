// Package rules parses Datalog+/- rule files just far enough to skolemize
// existential rules and to extract predicate dependencies.
//
// An existential rule occupies one line:
//
//	#exists{Y,Z}: p(X,Y,Z) :- q(X).
//
// Skolemization replaces each existential variable V of the rule on line i
// (0-based, counting every line of the file) with fi_V applied to the
// frontier, the head arguments that are not existential:
//
//	p(X,f0_Y(X),f0_Z(X)) :- q(X).
//
// Every other line passes through byte-for-byte.
package rules
