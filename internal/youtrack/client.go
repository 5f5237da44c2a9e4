// Package youtrack implements the YouTrack integration: when a release is
// packed, the issues referenced by its changes are marked with the release
// version and moved to the released state. All failures here are reported as
// warnings by the callers; a changelog is never rolled back because an issue
// tracker was unreachable.
package youtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Client is a minimal YouTrack REST API client using bearer token auth.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient returns a client for the YouTrack instance at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: defaultRequestTimeout},
	}
}

// errorResponse is the shape YouTrack uses for API errors. Responses are
// probed against it before decoding the expected payload.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (c *Client) do(ctx context.Context, method, apiPath string, query url.Values, body, out any) error {
	endpoint := c.baseURL + "/api/" + strings.TrimLeft(apiPath, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respText, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", endpoint, err)
	}

	var apiErr errorResponse
	if json.Unmarshal(respText, &apiErr) == nil && apiErr.Error != "" {
		return fmt.Errorf("error from YouTrack: %s - %s", apiErr.Error, apiErr.ErrorDescription)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: unexpected status %s", method, apiPath, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respText, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, apiPath string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, apiPath, query, nil, out)
}

func (c *Client) postJSON(ctx context.Context, apiPath string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, apiPath, query, body, out)
}

// FindProjectID resolves the project an issue belongs to.
func (c *Client) FindProjectID(ctx context.Context, issue string) (string, error) {
	var resp struct {
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	q := url.Values{"fields": {"project(id)"}}
	if err := c.getJSON(ctx, "issues/"+issue, q, &resp); err != nil {
		return "", err
	}
	if resp.Project.ID == "" {
		return "", fmt.Errorf("issue %s has no project", issue)
	}
	return resp.Project.ID, nil
}

// EnsureVersion makes sure a version value named version exists in the
// project's version bundle behind fieldName. A missing version is created and
// marked released with releaseDate.
func (c *Client) EnsureVersion(ctx context.Context, projectID, fieldName, version string, releaseDate time.Time) error {
	bundleID, err := c.findVersionBundle(ctx, projectID, fieldName)
	if err != nil {
		return err
	}

	var values []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	q := url.Values{"fields": {"id,name"}, "top": {"500"}}
	path := "admin/customFieldSettings/bundles/version/" + bundleID + "/values"
	if err := c.getJSON(ctx, path, q, &values); err != nil {
		return fmt.Errorf("listing versions in bundle %s: %w", bundleID, err)
	}
	for _, v := range values {
		if v.Name == version {
			return nil
		}
	}

	body := map[string]any{
		"name":        version,
		"archived":    false,
		"released":    true,
		"releaseDate": releaseDate.Unix(),
	}
	createQ := url.Values{"fields": {"id,name,released,releaseDate,archived"}}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, path, createQ, body, &created); err != nil {
		return fmt.Errorf("creating version %q: %w", version, err)
	}
	return nil
}

// findVersionBundle locates the version bundle attached to the named custom
// field of a project. Fields without a bundle are skipped.
func (c *Client) findVersionBundle(ctx context.Context, projectID, fieldName string) (string, error) {
	var fields []struct {
		Bundle *struct {
			ID string `json:"id"`
		} `json:"bundle"`
		Field struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"field"`
	}
	q := url.Values{"fields": {"field(name,id),bundle(id)"}, "top": {"200"}}
	if err := c.getJSON(ctx, "admin/projects/"+projectID+"/customFields", q, &fields); err != nil {
		return "", fmt.Errorf("listing custom fields of project %s: %w", projectID, err)
	}

	for _, f := range fields {
		if f.Field.Name == fieldName && f.Bundle != nil {
			return f.Bundle.ID, nil
		}
	}
	return "", fmt.Errorf("version field %q not found in project %s", fieldName, projectID)
}

// SetIssueVersionAndState stamps the release version onto an issue and moves
// it to the target state in a single update.
func (c *Client) SetIssueVersionAndState(ctx context.Context, issueID, versionField, version, state string) error {
	type namedValue struct {
		Name string `json:"name"`
	}
	type fieldValue struct {
		Name  string     `json:"name"`
		Type  string     `json:"$type"`
		Value namedValue `json:"value"`
	}

	body := map[string]any{
		"customFields": []fieldValue{
			{Name: versionField, Type: "SingleVersionIssueCustomField", Value: namedValue{Name: version}},
			{Name: "State", Type: "StateIssueCustomField", Value: namedValue{Name: state}},
		},
	}

	q := url.Values{"fields": {"id,customFields(name,value(name))"}}
	var resp json.RawMessage
	if err := c.postJSON(ctx, "issues/"+issueID, q, body, &resp); err != nil {
		return fmt.Errorf("updating issue %s: %w", issueID, err)
	}
	return nil
}
