package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/ginjaninja78/crm-contact-importer/internal/mapping"
)

const createCompanyMutation = `mutation CreateCompany($input: CompanyCreateInput!) {
  createCompany(data: $input) {
    id
    name
    domainName
  }
}`

const createPersonMutation = `mutation CreatePerson($input: PersonCreateInput!) {
  createPerson(data: $input) {
    id
    name
    email
    phone
  }
}`

// maxErrorBody bounds how much of a non-JSON error body ends up in messages.
const maxErrorBody = 512

// Record is a record created by a mutation.
type Record struct {
	ID       string
	Duration time.Duration
}

// graphQLRequest is the POST body of a GraphQL call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// CreateCompany issues the createCompany mutation.
func (c *Client) CreateCompany(ctx context.Context, input mapping.CompanyInput) (Record, error) {
	return c.mutate(ctx, "crm.createCompany", createCompanyMutation, "createCompany", input)
}

// CreatePerson issues the createPerson mutation.
func (c *Client) CreatePerson(ctx context.Context, input mapping.PersonInput) (Record, error) {
	return c.mutate(ctx, "crm.createPerson", createPersonMutation, "createPerson", input)
}

// mutate posts a single-input mutation and extracts data.<field>.id from the
// response.
func (c *Client) mutate(ctx context.Context, op, query, field string, input any) (Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Record{}, &Error{Op: op, Kind: KindTransport, Err: err}
		}
	}

	payload, err := json.Marshal(graphQLRequest{
		Query:     query,
		Variables: map[string]any{"input": input},
	})
	if err != nil {
		return Record{}, &Error{Op: op, Kind: KindDecode, Err: fmt.Errorf("failed to marshal payload: %w", err)}
	}

	status, body, duration, err := c.post(ctx, payload)
	c.logger.Debug("crm.request", "op", op, "status", status, "duration", duration, "error", err)
	if err != nil {
		return Record{}, &Error{Op: op, Kind: KindTransport, Err: err}
	}

	id, err := extractID(status, body, field)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Op = op
		}
		return Record{}, err
	}

	return Record{ID: id, Duration: duration}, nil
}

// post sends the body to the GraphQL endpoint with the per-request timeout.
func (c *Client) post(ctx context.Context, payload []byte) (int, []byte, time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GraphQLURL(), bytes.NewReader(payload))
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, time.Since(start), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, time.Since(start), err
	}
	return resp.StatusCode, body, time.Since(start), nil
}

// extractID interprets a GraphQL response. A non-empty "errors" list wins
// over the HTTP status, since GraphQL servers often pair them.
func extractID(status int, body []byte, field string) (string, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		if status >= http.StatusBadRequest {
			return "", &Error{Kind: KindStatus, Status: status, Err: errors.New(snippet(body))}
		}
		return "", &Error{Kind: KindDecode, Status: status, Err: fmt.Errorf("response is not valid JSON: %w", err)}
	}

	var envelope struct {
		Errors GraphQLErrors `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		return "", &Error{Kind: KindGraphQL, Status: status, Err: envelope.Errors}
	}

	if status >= http.StatusBadRequest {
		return "", &Error{Kind: KindStatus, Status: status, Err: errors.New(snippet(body))}
	}

	val, err := jsonpath.Get("$.data."+field+".id", doc)
	if err != nil {
		return "", &Error{Kind: KindDecode, Status: status, Err: fmt.Errorf("response has no %s id: %w", field, err)}
	}
	id, ok := val.(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", &Error{Kind: KindDecode, Status: status, Err: fmt.Errorf("response has no %s id", field)}
	}
	return id, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
