/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pipeline

// Operation identifies which repository operation a Context is carrying.
// The tag is fixed when the Context is created and never changes afterward.
type Operation int

const (
	// OpInsert stores a single new entity.
	OpInsert Operation = iota
	// OpGet retrieves entities matching query options.
	OpGet
	// OpGetByID retrieves a single entity by its key.
	OpGetByID
	// OpUpdate replaces a single existing entity.
	OpUpdate
	// OpDelete removes a single entity (by value or by key).
	OpDelete
	// OpInsertRange stores a batch of new entities.
	OpInsertRange
	// OpUpdateRange replaces a batch of existing entities.
	OpUpdateRange
	// OpDeleteRange removes a batch of entities (by values or by filter).
	OpDeleteRange
)

var operationNames = map[Operation]string{
	OpInsert:      "Insert",
	OpGet:         "Get",
	OpGetByID:     "GetById",
	OpUpdate:      "Update",
	OpDelete:      "Delete",
	OpInsertRange: "InsertRange",
	OpUpdateRange: "UpdateRange",
	OpDeleteRange: "DeleteRange",
}

// String returns the canonical operation name.
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "Unknown"
}

// IsMutation reports whether the operation writes to the backing store.
func (o Operation) IsMutation() bool {
	switch o {
	case OpInsert, OpUpdate, OpDelete, OpInsertRange, OpUpdateRange, OpDeleteRange:
		return true
	default:
		return false
	}
}

// IsRange reports whether the operation carries a collection of entities.
func (o Operation) IsRange() bool {
	switch o {
	case OpInsertRange, OpUpdateRange, OpDeleteRange:
		return true
	default:
		return false
	}
}
