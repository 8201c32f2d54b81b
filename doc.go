/*
Package repokit provides a uniform repository abstraction over heterogeneous
backing stores, with cross-cutting behaviors (logging, validation, auditing,
performance tracking) composed through a middleware pipeline.

Architecture:
  - datastore: the storage backend contract and its implementations
    (in-memory concurrent map, Postgres over sqlx, DynamoDB)
  - pipeline: the middleware execution chain and per-call operation context
  - middleware: the standard middleware units (logging, validation,
    performance, audit)
  - repository: the composed repository decorating a backend with a pipeline
  - query / specification: fluent query options and composable predicates
  - registry: per-type metadata (key handling, display names, index maps)

Basic Usage:

	// Describe the entity's key handling
	registry.RegisterDescriptor(registry.Descriptor[Customer, string]{
	    Key:    func(c Customer) string { return c.ID },
	    SetKey: func(c *Customer, k string) { c.ID = k },
	    NewKey: registry.UUIDKey(),
	})

	// Pick a backend and compose a repository around it
	backend, _ := memory.NewFromRegistry[Customer, string]()
	repo, _ := repository.NewComposed[Customer, string](backend, nil)

	// Register cross-cutting behavior
	_ = repo.Pipeline().Register(middleware.NewValidation[Customer, string](validateCustomer))
	_ = repo.Pipeline().Register(middleware.NewLogging[Customer, string](log.Println, true))

	// Use it like the backend, with the pipeline in between
	stored, err := repo.Insert(ctx, Customer{Name: "Ann"})

The root package offers a thread-safe manager and a multi-type registry for
applications that hold many repositories keyed by name.
*/
package repokit
