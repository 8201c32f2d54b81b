/*
Package datastore defines the storage backend contract for repokit.

The main interface is DataStore[T, K], providing generic CRUD, batch and
streaming operations for any entity type T keyed by K. The composed
repository (package repository) decorates a DataStore with the middleware
pipeline; backends themselves stay policy-free.

Implementations:
  - memory: concurrent in-process map, suitable for tests and caches
  - postgres: relational backend over sqlx
  - ddb: DynamoDB backend with single-table index maps

Streaming bypasses the middleware pipeline: there is no stream operation tag,
and enumeration is a capability of the backend rather than a pipelined call.
*/
package datastore
