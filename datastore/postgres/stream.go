/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/suparena/repokit/datastore"
	"github.com/suparena/repokit/query"
)

// Stream enumerates matching rows in pages of StreamOptions.PageSize,
// re-issuing the select with a sliding offset until a short page signals the
// end of the result set.
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

	var itemIndex int64
	var pageNumber int
	startTime := time.Now()
	pageSize := int(options.PageSize)

	// Page over a copy of the options so the caller's paging survives.
	page := query.Options[T]{}
	if opts != nil {
		page = *opts
	}
	page.Limit = pageSize

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

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entities, err := s.Get(ctx, &page)
		if err != nil {
			if options.ErrorHandler != nil && options.ErrorHandler(err) {
				// Caller opted to skip this page.
				page.Offset += pageSize
				continue
			}
			resultCh <- datastore.StreamResult[T]{
				Error: fmt.Errorf("stream page failed: %w", err),
				Meta: datastore.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			return
		}

		pageNumber++

		for _, entity := range entities {
			select {
			case <-ctx.Done():
				return
			case resultCh <- datastore.StreamResult[T]{
				Item: entity,
				Meta: datastore.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}:
				itemIndex++
			}
		}

		reportProgress()

		if len(entities) < pageSize {
			return
		}
		page.Offset += pageSize
	}
}
