package moneybrilliant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"networth_scraper/internal/config"
	"networth_scraper/internal/credentials"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

const (
	loginPath   = "/login"
	refreshPath = "/api/v1/site_accounts/refresh"

	BankAccountsPath       = "/api/v1/bank_accounts"
	CreditCardAccountsPath = "/api/v1/credit_card_accounts"
	InvestmentAccountsPath = "/api/v1/investment_accounts"
)

// ErrNoAccountsList is returned when a 2xx account response lacks a usable
// "accounts" array. The service answers some auth failures this way.
var ErrNoAccountsList = errors.New("response has no accounts list")

// Client is a MoneyBrilliant session. Cookies from the login flow are kept in
// its jar, so one Client must be used from login through to the last fetch.
type Client struct {
	baseURL string
	client  *http.Client
	auth    AuthHeaders
}

type userAgentTransport struct {
	userAgent string
	next      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}

// NewClient builds a session client. A zero timeout leaves requests unbounded.
func NewClient(baseURL, userAgent string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
			Transport: &userAgentTransport{
				userAgent: userAgent,
				next:      http.DefaultTransport,
			},
		},
	}, nil
}

// NewClientFromConfig builds a session client from the moneybrilliant config section.
func NewClientFromConfig(cfg config.MoneyBrilliantConfig) (*Client, error) {
	return NewClient(cfg.BaseURL, cfg.UserAgent, cfg.HTTPTimeout)
}

// AuthHeaders returns the headers obtained by the last successful Login.
func (c *Client) AuthHeaders() AuthHeaders {
	return c.auth
}

// Login signs in through the HTML form and captures the API token embedded in
// the page that follows.
func (c *Client) Login(ctx context.Context, creds credentials.Credentials) (AuthHeaders, error) {
	log.Debug().Str("user", creds.Username).Msg("Fetching login page")

	loginURL := c.baseURL + loginPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to create request: %w", err)
	}

	page, err := c.doText(req)
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to fetch login page: %w", err)
	}

	csrfToken, err := ExtractCSRFToken(page)
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to read login form: %w", err)
	}

	form := url.Values{
		"utf8":               {"✓"},
		"authenticity_token": {csrfToken},
		"user[email]":        {creds.Username},
		"user[password]":     {creds.Password},
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	log.Debug().Msg("Submitting login form")
	body, err := c.doText(req)
	if err != nil {
		return AuthHeaders{}, fmt.Errorf("failed to submit login form: %w", err)
	}

	token, err := ExtractAuthToken(body)
	if err != nil {
		log.Debug().
			Int("body_length", len(body)).
			Str("response_body_preview", body[:min(500, len(body))]).
			Msg("Login response did not contain an auth token")
		return AuthHeaders{}, fmt.Errorf("failed to log in: %w", err)
	}

	c.auth = AuthHeaders{Email: creds.Username, Token: token}
	log.Info().Str("user", creds.Username).Msg("Logged in to MoneyBrilliant")
	return c.auth, nil
}

// doText performs req and returns the body whatever the status code.
func (c *Client) doText(req *http.Request) (string, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	log.Debug().
		Str("url", req.URL.String()).
		Int("status_code", resp.StatusCode).
		Int("body_length", len(body)).
		Msg("Received response")
	return string(body), nil
}

// Refresh asks the service to re-sync linked sites. The response is not inspected.
func (c *Client) Refresh(ctx context.Context) error {
	var payload refreshRequest
	payload.SiteAccount.ID = "refresh"

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+refreshPath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth.apply(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	log.Debug().Int("status_code", resp.StatusCode).Msg("Requested account refresh")
	return nil
}

// Accounts fetches one of the account list endpoints.
func (c *Client) Accounts(ctx context.Context, path string) (*AccountsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.auth.apply(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request %s failed with status %d: %s", path, resp.StatusCode, string(body))
	}

	var accounts AccountsResponse
	if err := json.NewDecoder(resp.Body).Decode(&accounts); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	if accounts.Accounts == nil {
		return nil, fmt.Errorf("%w from %s", ErrNoAccountsList, path)
	}

	log.Debug().
		Str("path", path).
		Int("accounts", len(accounts.Accounts)).
		Msg("Retrieved accounts")
	return &accounts, nil
}

func (c *Client) BankAccounts(ctx context.Context) (*AccountsResponse, error) {
	return c.Accounts(ctx, BankAccountsPath)
}

func (c *Client) CreditCardAccounts(ctx context.Context) (*AccountsResponse, error) {
	return c.Accounts(ctx, CreditCardAccountsPath)
}

func (c *Client) InvestmentAccounts(ctx context.Context) (*AccountsResponse, error) {
	return c.Accounts(ctx, InvestmentAccountsPath)
}

// FetchAll triggers a refresh and then reads every category in order.
func (c *Client) FetchAll(ctx context.Context, categories []config.Category) ([]CategoryAccounts, error) {
	if err := c.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh accounts: %w", err)
	}

	results := make([]CategoryAccounts, 0, len(categories))
	for _, cat := range categories {
		accounts, err := c.Accounts(ctx, cat.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s accounts: %w", cat.Name, err)
		}
		results = append(results, CategoryAccounts{Category: cat, Accounts: accounts})
	}
	return results, nil
}
