/*
Package query provides the fluent options object used by read and filtered
delete operations across all repokit backends.

Options is deliberately a data holder, not a query planner: it records what
the caller asked for (filter, sort, page, includes, no-tracking) and each
backend interprets the parts it can honour. The memory backend evaluates
Filter specifications and Less comparisons in process; relational backends
push WhereClause fragments down to the engine.
*/
package query
