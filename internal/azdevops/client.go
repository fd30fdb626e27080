// Package azdevops queries the Azure DevOps git REST API for branch tips.
package azdevops

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mfriesen42/autopull/internal/reconciler"
)

// DefaultBaseURL is the hosted Azure DevOps endpoint.
const DefaultBaseURL = "https://dev.azure.com"

// Client resolves the tip commit of a branch via the commits API. It
// implements reconciler.RemoteSource.
type Client struct {
	// BaseURL can be pointed at a test server; it defaults to the hosted
	// service.
	BaseURL string

	organization string
	project      string
	repository   string
	branch       string
	pat          string
	http         *http.Client
}

// NewClient returns a Client for one repository and branch, authenticating
// with the given personal access token.
func NewClient(organization, project, repository, branch, pat string) *Client {
	return &Client{
		BaseURL:      DefaultBaseURL,
		organization: organization,
		project:      project,
		repository:   repository,
		branch:       branch,
		pat:          pat,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

type commitsResponse struct {
	Value []struct {
		CommitID string `json:"commitId"`
	} `json:"value"`
}

// Tip returns the commit id at the tip of the configured branch. All failure
// modes, including rejected credentials and empty branches, surface as a
// reconciler.NetworkError.
func (c *Client) Tip(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("branchName", c.branch)
	query.Set("searchCriteria.itemVersion.version", c.branch)
	query.Set("searchCriteria.itemVersion.versionType", "branch")

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s/commits?%s",
		c.BaseURL,
		url.PathEscape(c.organization),
		url.PathEscape(c.project),
		url.PathEscape(c.repository),
		query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", &reconciler.NetworkError{Err: err}
	}
	// Azure DevOps PATs go in the password slot with an empty user.
	req.SetBasicAuth("", c.pat)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &reconciler.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &reconciler.NetworkError{Err: fmt.Errorf("commits query returned %s", resp.Status)}
	}

	var payload commitsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &reconciler.NetworkError{Err: fmt.Errorf("decoding commits response: %w", err)}
	}
	if len(payload.Value) == 0 {
		return "", &reconciler.NetworkError{Err: fmt.Errorf("no commits found on branch %s", c.branch)}
	}
	return payload.Value[0].CommitID, nil
}

// Available checks if the service answers at all. It feeds a single startup
// log line; the polling loop is the real retry mechanism.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	endpoint := fmt.Sprintf("%s/%s", c.BaseURL, url.PathEscape(c.organization))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusInternalServerError
}
