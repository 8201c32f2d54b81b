/*
Package repository provides the composed repository: the outward-facing
implementation of the repokit operation surface that wires a middleware
pipeline around a storage backend.

	backend, _ := memory.NewFromRegistry[Customer, string]()
	repo, _ := repository.NewComposed[Customer, string](backend, nil)
	_ = repo.Pipeline().Register(middleware.NewLogging[Customer, string](log.Println, true))

	stored, err := repo.Insert(ctx, Customer{Name: "Ann"})

Callers observe exactly the errors the backend would produce when called
directly, plus whatever a registered validation middleware records. The
composed repository adds no wrapper error type and performs no retries.
*/
package repository
