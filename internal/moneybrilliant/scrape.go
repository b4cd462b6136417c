package moneybrilliant

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

const authTokenMarker = "window.sessionStorage.auth_token"

var (
	ErrCSRFTokenNotFound = errors.New("csrf-token meta tag not found")
	ErrAuthTokenNotFound = errors.New("auth token not found in login response")
)

// ExtractCSRFToken returns the content of the first element named "csrf-token".
func ExtractCSRFToken(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	if token, ok := findCSRFToken(doc); ok {
		return token, nil
	}
	return "", ErrCSRFTokenNotFound
}

func findCSRFToken(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && attr(n, "name") == "csrf-token" {
		return attr(n, "content"), true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if token, ok := findCSRFToken(c); ok {
			return token, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// ExtractAuthToken pulls the first single-quoted string following the
// sessionStorage auth_token assignment out of the post-login page.
func ExtractAuthToken(body string) (string, error) {
	idx := strings.Index(body, authTokenMarker)
	if idx < 0 {
		return "", ErrAuthTokenNotFound
	}

	rest := body[idx+len(authTokenMarker):]
	start := strings.IndexByte(rest, '\'')
	if start < 0 {
		return "", ErrAuthTokenNotFound
	}
	rest = rest[start+1:]

	end := strings.IndexByte(rest, '\'')
	if end <= 0 {
		return "", ErrAuthTokenNotFound
	}
	return rest[:end], nil
}
