/*
Package middleware provides the standard middleware units shipped with
repokit: logging, validation, performance timing and audit trail.

Each unit is a self-contained policy over the generic pipeline context,
stateless aside from constructor-injected configuration, and safe to share
across concurrent repository calls.

	p := pipeline.New[Customer, string]()
	_ = p.Register(middleware.NewValidation[Customer, string](validateCustomer))
	_ = p.Register(middleware.NewAudit[Customer, string](middleware.JSONSink(auditLog)))
	_ = p.Register(middleware.NewLogging[Customer, string](log.Println, true))

Validation applies only to Insert, Update and their range forms, failing fast
on the first invalid entity. Audit records one summary entry per successful
mutating call. Logging and performance observe every operation and never
alter control flow or absorb errors.
*/
package middleware
