/*
Package registry holds per-type metadata used across repokit.

Two registries live here:

  - Descriptor registry: how to read, write and mint keys for an entity
    type, plus its display name. Backends consult it to assign generated
    identifiers on insert; the composed repository uses it for entity type
    names in log lines and audit entries.
  - Index-map registry: DynamoDB key templates (PK, SK, GSI keys) consumed
    by the ddb backend's macro expansion.

Registration typically happens in init() next to the entity definition:

	func init() {
	    registry.RegisterDescriptor(registry.Descriptor[User, string]{
	        Key:    func(u User) string { return u.ID },
	        SetKey: func(u *User, k string) { u.ID = k },
	        NewKey: registry.UUIDKey(),
	    })
	}
*/
package registry
