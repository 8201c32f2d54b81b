/*
Package ddb provides a DynamoDB implementation of the DataStore interface
using single-table design.

Keys are derived from index maps registered per entity type: macro templates
like PK: "USER#{ID}" are expanded against entity fields on every write, so
the entity struct stays free of storage concerns.

	registry.RegisterIndexMap[User](map[string]string{
	    "PK": "USER#{ID}",
	    "SK": "USER#{ID}",
	})
	store, err := ddb.NewFromCredentials[User, string](accessKey, secretKey, region, table)

Capabilities and limits:
  - Insert and Update use conditional puts (attribute_not_exists /
    attribute_exists) to distinguish create from replace.
  - Range operations use BatchWriteItem; batch puts are unconditional.
  - Get and DeleteWhere scan the table with the options' where clause as a
    filter expression. Sorting and in-process filter specifications are
    rejected; scan results are unordered.
  - Stream pages through the scan, emitting items as they arrive.
*/
package ddb
