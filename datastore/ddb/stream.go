/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/repokit/datastore"
	"github.com/suparena/repokit/query"
)

// Stream performs a paged scan against DynamoDB, emitting items as they
// arrive rather than collecting the whole result set.
func (s *Store[T, K]) Stream(ctx context.Context, opts *query.Options[T], streamOpts ...datastore.StreamOption) <-chan datastore.StreamResult[T] {
	options := datastore.DefaultStreamOptions()
	for _, opt := range streamOpts {
		opt(&options)
	}

	resultCh := make(chan datastore.StreamResult[T], options.BufferSize)

	go s.streamWorker(ctx, opts, options, resultCh)

	return resultCh
}

func (s *Store[T, K]) streamWorker(
	ctx context.Context,
	opts *query.Options[T],
	options datastore.StreamOptions,
	resultCh chan<- datastore.StreamResult[T],
) {
	defer close(resultCh)

	if err := s.validateOptions(opts); err != nil {
		resultCh <- datastore.StreamResult[T]{Error: err}
		return
	}

	input := &sdk.ScanInput{
		TableName: &s.tableName,
		Limit:     aws.Int32(options.PageSize),
	}
	if opts != nil && opts.WhereClause != "" {
		input.FilterExpression = aws.String(opts.WhereClause)
		values, err := filterValues(opts.WhereArgs)
		if err != nil {
			resultCh <- datastore.StreamResult[T]{Error: err}
			return
		}
		input.ExpressionAttributeValues = values
	}

	var itemIndex int64
	var pageNumber int
	startTime := time.Now()

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := datastore.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(itemIndex) / elapsed
		}
		options.ProgressHandler(progress)
	}

	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if lastEvaluatedKey != nil {
			input.ExclusiveStartKey = lastEvaluatedKey
		}

		out, err := s.client.Scan(ctx, input)
		if err != nil {
			if options.ErrorHandler != nil && options.ErrorHandler(err) {
				continue
			}
			resultCh <- datastore.StreamResult[T]{
				Error: fmt.Errorf("scan failed: %w", err),
				Meta: datastore.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			return
		}

		pageNumber++

		for _, item := range out.Items {
			select {
			case <-ctx.Done():
				return
			default:
			}

			result := datastore.StreamResult[T]{
				Meta: datastore.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			entity := new(T)
			if err := attributevalue.UnmarshalMap(item, entity); err != nil {
				result.Error = fmt.Errorf("failed to unmarshal item: %w", err)
			} else {
				result.Item = *entity
			}

			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
				itemIndex++
			}
		}

		reportProgress()

		if out.LastEvaluatedKey == nil {
			return
		}
		lastEvaluatedKey = out.LastEvaluatedKey
	}
}
