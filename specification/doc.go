/*
Package specification provides a small composable predicate algebra for
filtering entities in memory.

Specifications combine with And, Or and Not:

	active := specification.ByFunc(func(u User) bool { return u.Active })
	adult := specification.ByFunc(func(u User) bool { return u.Age >= 18 })
	spec := specification.And(active, specification.Not(adult))

In-process backends evaluate specifications directly. Backends that translate
queries to a wire protocol (postgres, ddb) cannot execute arbitrary Go
predicates; use the raw where-clause support on query.Options for those.
*/
package specification
