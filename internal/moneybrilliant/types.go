package moneybrilliant

import (
	"net/http"

	"networth_scraper/internal/config"

	"github.com/shopspring/decimal"
)

type Account struct {
	SiteName    string          `json:"site_name"`
	DisplayName string          `json:"display_name"`
	Balance     decimal.Decimal `json:"balance"`
}

// Key is the header text the account's balance is filed under.
func (a Account) Key() string {
	return a.SiteName + "_" + a.DisplayName
}

type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
}

// AuthHeaders identify the logged in user on every API request.
type AuthHeaders struct {
	Email string
	Token string
}

func (h AuthHeaders) apply(req *http.Request) {
	req.Header.Set("X-User-Email", h.Email)
	req.Header.Set("X-User-Token", h.Token)
}

// CategoryAccounts pairs a fetched response with the category it came from
type CategoryAccounts struct {
	Category config.Category
	Accounts *AccountsResponse
}

type refreshRequest struct {
	SiteAccount struct {
		ID string `json:"id"`
	} `json:"site_account"`
}
