package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// Proposal is one advisory (vacancy, teacher) pairing. Proposals are
// untrusted input: every one runs through the full commit validation before
// anything is written.
type Proposal struct {
	VacancyID string `json:"vacancy_id"`
	TeacherID string `json:"teacher_id"`
}

// Client fetches proposals from the external advisory service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs the client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch requests proposals for all pending vacancies on the date.
func (c *Client) Fetch(ctx context.Context, date time.Time) ([]Proposal, error) {
	endpoint := fmt.Sprintf("%s/proposals?date=%s", c.baseURL, url.QueryEscape(models.DateKey(date)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build advisory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch advisory proposals: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisory service returned %d", resp.StatusCode)
	}

	var body struct {
		Proposals []Proposal `json:"proposals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode advisory proposals: %w", err)
	}
	return body.Proposals, nil
}
