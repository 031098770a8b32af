package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrSupabaseConfig = errors.New("supabase url and key are required")

// SupabaseClient talks to the PostgREST endpoint of the backend.
type SupabaseClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSupabaseClient(baseURL, apiKey string, httpClient *http.Client) (*SupabaseClient, error) {
	if baseURL == "" || apiKey == "" {
		return nil, ErrSupabaseConfig
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &SupabaseClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// URL returns the project URL the client was built with.
func (c *SupabaseClient) URL() string {
	return c.baseURL
}

// From starts a query on table.
func (c *SupabaseClient) From(table string) *Query {
	return &Query{client: c, table: table}
}

// Query builds PostgREST requests.
type Query struct {
	client  *SupabaseClient
	table   string
	columns string
	filters url.Values
	orders  []string
	limit   int
	single  bool
}

func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column string, value any) *Query {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	q.filters.Add(column, fmt.Sprintf("eq.%v", value))
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single expects exactly one row back.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Execute runs a SELECT.
func (q *Query) Execute(ctx context.Context) (*Response, error) {
	params := q.filterParams()
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint(params), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return q.client.do(req)
}

// ExecuteUpdate patches the rows matched by the filters.
func (q *Query) ExecuteUpdate(ctx context.Context, data any) (*Response, error) {
	if len(q.filters) == 0 {
		return nil, errors.New("update requires at least one filter")
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, q.endpoint(q.filterParams()), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req)
}

func (q *Query) filterParams() url.Values {
	params := url.Values{}
	for k, vs := range q.filters {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	return params
}

func (q *Query) endpoint(params url.Values) string {
	reqURL := q.client.baseURL + "/rest/v1/" + q.table
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// ExecuteInsert inserts data and returns the stored representation.
func (q *Query) ExecuteInsert(ctx context.Context, data any) (*Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.client.baseURL+"/rest/v1/"+q.table, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	return q.client.do(req)
}

// RPC calls a stored procedure.
func (c *SupabaseClient) RPC(ctx context.Context, fn string, params any) (*Response, error) {
	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/rpc/"+fn, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if params != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req)
}

// Response is a raw PostgREST response.
type Response struct {
	StatusCode int
	Body       []byte
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Err returns an error if the response indicates failure.
func (r *Response) Err() error {
	if r.StatusCode < 400 {
		return nil
	}
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &errResp); err == nil {
		if errResp.Message != "" {
			return fmt.Errorf("supabase error: %s", errResp.Message)
		}
		if errResp.Error != "" {
			return fmt.Errorf("supabase error: %s", errResp.Error)
		}
	}
	return fmt.Errorf("supabase error: status %d", r.StatusCode)
}

func (c *SupabaseClient) do(req *http.Request) (*Response, error) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	out := &Response{StatusCode: resp.StatusCode, Body: body}
	if err := out.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
