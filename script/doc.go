// Package script runs HCL scenario files against a reflection registry.
//
// A scenario is a sequence of step blocks executed in order. Each step
// names a variable or a type in its labels:
//
//	new "c" {
//	  type = "Counter"
//	}
//
//	call "c" "multiply" {
//	  args = [2]
//	  into = "m"
//	}
//
//	expect "m" {
//	  equals = 12
//	}
//
// Literal arguments are converted to the parameter types of the selected
// overload; refs pass existing variables after the literals. When
// signature is set the overload is chosen by exact parameter type names,
// otherwise the first overload the arguments convert to wins.
//
// Every value a scenario owns lives in a scope.Scope and is released when
// the run ends, whether it succeeded or not.
package script
