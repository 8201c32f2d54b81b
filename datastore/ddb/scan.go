/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/repokit/errors"
	"github.com/suparena/repokit/query"
)

// Get retrieves entities matching the options by scanning the table. The
// where clause is passed down as a DynamoDB filter expression with named
// values; paging is applied client-side after the scan.
func (s *Store[T, K]) Get(ctx context.Context, opts *query.Options[T]) ([]T, error) {
	if err := s.validateOptions(opts); err != nil {
		return nil, err
	}

	items, err := s.scan(ctx, opts, 0)
	if err != nil {
		return nil, err
	}

	entities := make([]T, 0, len(items))
	for _, item := range items {
		entity := new(T)
		if err := attributevalue.UnmarshalMap(item, entity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item: %w", err)
		}
		entities = append(entities, *entity)
	}

	if opts != nil {
		entities = page(entities, opts.Offset, opts.Limit)
	}
	return entities, nil
}

// scan collects raw items across scan pages. pageSize 0 uses the service
// default page size.
func (s *Store[T, K]) scan(ctx context.Context, opts *query.Options[T], pageSize int32) ([]map[string]types.AttributeValue, error) {
	input := &sdk.ScanInput{
		TableName: &s.tableName,
	}
	if opts != nil && opts.WhereClause != "" {
		input.FilterExpression = aws.String(opts.WhereClause)
		values, err := filterValues(opts.WhereArgs)
		if err != nil {
			return nil, err
		}
		input.ExpressionAttributeValues = values
	}
	if pageSize > 0 {
		input.Limit = aws.Int32(pageSize)
	}

	var items []map[string]types.AttributeValue
	paginator := sdk.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		items = append(items, out.Items...)
	}
	return items, nil
}

// DeleteWhere scans for matching items and batch-deletes them, returning the
// number removed. A where clause is required; an unbounded delete must be
// spelled out by the caller.
func (s *Store[T, K]) DeleteWhere(ctx context.Context, opts *query.Options[T]) (int, error) {
	if opts == nil {
		return 0, errors.NewNilArgumentError("opts")
	}
	if err := s.validateOptions(opts); err != nil {
		return 0, err
	}
	if opts.WhereClause == "" {
		return 0, errors.NewValidationError("where", "a where clause is required for filtered deletes")
	}

	items, err := s.scan(ctx, opts, 0)
	if err != nil {
		return 0, err
	}

	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		pk, okPK := item["PK"]
		sk, okSK := item["SK"]
		if !okPK || !okSK {
			continue
		}
		keys = append(keys, map[string]types.AttributeValue{"PK": pk, "SK": sk})
	}

	if err := s.batchDelete(ctx, keys); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func page[T any](entities []T, offset, limit int) []T {
	if offset >= len(entities) {
		return []T{}
	}
	entities = entities[offset:]
	if limit > 0 && limit < len(entities) {
		entities = entities[:limit]
	}
	return entities
}
