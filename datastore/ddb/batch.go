/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/repokit/errors"
)

// batchMax is the BatchWriteItem request limit.
const batchMax = 25

// InsertRange stores a batch of entities via BatchWriteItem. Batch puts are
// unconditional: an existing item with the same key is overwritten, since
// DynamoDB batch writes do not support condition expressions.
func (s *Store[T, K]) InsertRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}
	if err := s.batchPut(ctx, entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// UpdateRange replaces a batch of entities via BatchWriteItem. Like
// InsertRange, batch puts are unconditional.
func (s *Store[T, K]) UpdateRange(ctx context.Context, entities []T) ([]T, error) {
	if entities == nil {
		return nil, errors.NewNilArgumentError("entities")
	}
	if err := s.batchPut(ctx, entities); err != nil {
		return nil, err
	}
	return entities, nil
}

// DeleteRange removes a batch of entities by key, returning the number of
// delete requests issued.
func (s *Store[T, K]) DeleteRange(ctx context.Context, entities []T) (int, error) {
	if entities == nil {
		return 0, errors.NewNilArgumentError("entities")
	}

	keys := make([]map[string]types.AttributeValue, 0, len(entities))
	for _, entity := range entities {
		keyMap, _, err := s.entityKey(entity)
		if err != nil {
			return 0, err
		}
		keys = append(keys, keyMap)
	}

	if err := s.batchDelete(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *Store[T, K]) batchPut(ctx context.Context, entities []T) error {
	requests := make([]types.WriteRequest, 0, len(entities))
	for _, entity := range entities {
		av, err := s.marshalItem(entity)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: av},
		})
	}
	return s.batchWrite(ctx, requests)
}

func (s *Store[T, K]) batchDelete(ctx context.Context, keys []map[string]types.AttributeValue) error {
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, key := range keys {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: key},
		})
	}
	return s.batchWrite(ctx, requests)
}

// batchWrite sends requests in chunks of batchMax, re-submitting unprocessed
// items until DynamoDB accepts them all.
func (s *Store[T, K]) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for start := 0; start < len(requests); start += batchMax {
		end := start + batchMax
		if end > len(requests) {
			end = len(requests)
		}

		pending := requests[start:end]
		for len(pending) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			out, err := s.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					s.tableName: pending,
				},
			})
			if err != nil {
				return fmt.Errorf("BatchWriteItem failed: %w", err)
			}

			pending = out.UnprocessedItems[s.tableName]
		}
	}
	return nil
}
