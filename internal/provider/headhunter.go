// Package provider implements the search providers that turn a user's
// settings into job postings, plus the retry and rate-limit decorators
// shared by all of them.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mvoronin/jobscout/internal/model"
)

const hhSourceName = "HeadHunter"

// hhAreaIDs maps location names to HeadHunter area identifiers. Unrecognized
// locations fall back to the remote area.
var hhAreaIDs = map[string]int{
	"Moscow":           1,
	"Saint Petersburg": 2,
	"Remote":           113,
	"New York":         124,
}

const hhRemoteAreaID = 113

// hhVacancy mirrors a single item in the HeadHunter vacancies response.
type hhVacancy struct {
	Name     string `json:"name"`
	Employer struct {
		Name string `json:"name"`
	} `json:"employer"`
	Salary       *hhSalary `json:"salary"`
	AlternateURL string    `json:"alternate_url"`
}

type hhSalary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

// hhResponse is the top-level HeadHunter vacancies response.
type hhResponse struct {
	Items []hhVacancy `json:"items"`
}

// HeadHunterProvider searches the HeadHunter public vacancies API.
type HeadHunterProvider struct {
	baseURL string
	perPage int
	client  *http.Client
}

// NewHeadHunterProvider creates a provider pointed at baseURL
// (https://api.hh.ru in production).
func NewHeadHunterProvider(baseURL string, perPage int, client *http.Client) *HeadHunterProvider {
	return &HeadHunterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		perPage: perPage,
		client:  client,
	}
}

func (p *HeadHunterProvider) Name() string { return hhSourceName }

// Search queries /vacancies with the user's settings mapped to HeadHunter's
// native parameters and normalizes the results into postings.
func (p *HeadHunterProvider) Search(ctx context.Context, settings model.Settings) ([]model.Posting, error) {
	q := url.Values{}
	q.Set("text", strings.Join(settings.Keywords, " AND "))
	q.Set("search_field", "name")
	for _, loc := range settings.Locations {
		q.Add("area", strconv.Itoa(areaID(loc)))
	}
	q.Set("salary", strconv.Itoa(settings.SalaryMin))
	q.Set("experience", string(settings.Experience))
	q.Set("per_page", strconv.Itoa(p.perPage))
	q.Set("page", "0")

	reqURL := p.baseURL + "/vacancies?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("headhunter search: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("headhunter search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("headhunter search"),
		}
	}

	var hhResp hhResponse
	if err := json.NewDecoder(resp.Body).Decode(&hhResp); err != nil {
		return nil, fmt.Errorf("headhunter search: decoding response: %w", err)
	}

	postings := make([]model.Posting, 0, len(hhResp.Items))
	for _, v := range hhResp.Items {
		postings = append(postings, model.Posting{
			Title:   v.Name,
			Company: v.Employer.Name,
			Salary:  formatHHSalary(v.Salary),
			URL:     v.AlternateURL,
			Source:  hhSourceName,
		})
	}
	return postings, nil
}

func areaID(location string) int {
	if id, ok := hhAreaIDs[location]; ok {
		return id
	}
	return hhRemoteAreaID
}

// formatHHSalary renders HeadHunter's from/to/currency triple, any part of
// which may be absent.
func formatHHSalary(s *hhSalary) string {
	if s == nil {
		return model.SalaryNotSpecified
	}
	switch {
	case s.From != nil && s.To != nil:
		return fmt.Sprintf("%d-%d %s", *s.From, *s.To, s.Currency)
	case s.From != nil:
		return fmt.Sprintf("from %d %s", *s.From, s.Currency)
	case s.To != nil:
		return fmt.Sprintf("up to %d %s", *s.To, s.Currency)
	}
	return model.SalaryNotSpecified
}
