/*
Package pipeline implements the middleware execution chain at the heart of
repokit.

A Pipeline holds an ordered list of Middleware units and composes them into a
single chain around a final operation (the actual storage call). Each
repository call builds a fresh Context carrying the operation tag, the
entities involved, the eventual result or error, and an open key/value bag
for middleware-to-middleware communication.

Ordering: registration order is execution order. The first registered
middleware is the outermost wrapper — for Register(U1); Register(U2) a call
runs U1-before, U2-before, final, U2-after, U1-after.

Short-circuiting: a middleware vetoes an operation by calling Context.Abort
and returning without invoking its continuation. Everything further in —
including the storage call — is skipped, while outer units still unwind
normally. Errors returned by a continuation are a separate, always-propagating
failure mode and are never conflated with a flag-based veto.

The pipeline never retries. Retry, backoff and similar policies are extension
points: write them as Middleware and register them where they belong in the
chain.
*/
package pipeline
