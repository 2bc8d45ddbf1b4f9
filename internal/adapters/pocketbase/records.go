package pocketbase

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"pricetrail/internal/ports/outbound"
)

// listPerPage is the page size used when draining list queries
const listPerPage = 200

type listResponse struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []outbound.Record `json:"items"`
}

func recordsPath(collection outbound.Collection) string {
	return "/api/collections/" + string(collection) + "/records"
}

// List retrieves all records matching the filter, draining every page of
// the remote list endpoint
func (c *Client) List(ctx context.Context, collection outbound.Collection, filter outbound.Filter, sort outbound.Sort) ([]outbound.Record, error) {
	query := url.Values{}
	if expr := renderFilter(filter); expr != "" {
		query.Set("filter", expr)
	}
	if key := renderSort(sort); key != "" {
		query.Set("sort", key)
	}
	query.Set("perPage", strconv.Itoa(listPerPage))

	var all []outbound.Record
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))

		var resp listResponse
		if err := c.send(ctx, http.MethodGet, recordsPath(collection), query, nil, &resp); err != nil {
			return nil, classifyRecordError(err)
		}

		all = append(all, resp.Items...)

		if resp.TotalPages <= page {
			break
		}
	}

	c.logger.Debug().
		Str("collection", string(collection)).
		Int("records", len(all)).
		Msg("List query completed")

	return all, nil
}

// Create creates a new record and returns it as stored remotely
func (c *Client) Create(ctx context.Context, collection outbound.Collection, fields outbound.Record) (outbound.Record, error) {
	var created outbound.Record
	if err := c.send(ctx, http.MethodPost, recordsPath(collection), nil, fields, &created); err != nil {
		return nil, classifyRecordError(err)
	}
	return created, nil
}

// Update patches an existing record
func (c *Client) Update(ctx context.Context, collection outbound.Collection, id string, fields outbound.Record) (outbound.Record, error) {
	var updated outbound.Record
	if err := c.send(ctx, http.MethodPatch, recordsPath(collection)+"/"+id, nil, fields, &updated); err != nil {
		return nil, classifyRecordError(err)
	}
	return updated, nil
}

// Delete removes a record by id
func (c *Client) Delete(ctx context.Context, collection outbound.Collection, id string) error {
	if err := c.send(ctx, http.MethodDelete, recordsPath(collection)+"/"+id, nil, nil, nil); err != nil {
		return classifyRecordError(err)
	}
	return nil
}

// classifyRecordError maps unclassified request failures to the
// server-rejection error; sentinel errors pass through untouched
func classifyRecordError(err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return remoteRejected(reqErr)
	}
	return err
}
