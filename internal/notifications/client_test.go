package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	path     string
	title    string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, *[]received) {
	t.Helper()
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = append(got, received{
			path:     r.URL.Path,
			title:    r.Header.Get("Title"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestSendNotification(t *testing.T) {
	srv, got := newServer(t, http.StatusOK)
	client := NewClient(srv.URL+"/", "networth", true, "high")

	require.NoError(t, client.SendNotification(context.Background(), "hello", "world"))
	require.Len(t, *got, 1)
	assert.Equal(t, received{path: "/networth", title: "hello", priority: "high", body: "world"}, (*got)[0])
}

func TestSendNotificationDisabled(t *testing.T) {
	srv, got := newServer(t, http.StatusOK)
	client := NewClient(srv.URL, "networth", false, "")

	require.NoError(t, client.SendNotification(context.Background(), "", "world"))
	client.NotifyUnmatched(context.Background(), "credit", []string{"a_b"})
	assert.Empty(t, *got)
}

func TestSendNotificationHTTPError(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	client := NewClient(srv.URL, "networth", true, "")

	err := client.SendNotification(context.Background(), "", "x")
	var notifErr *NotificationError
	require.True(t, errors.As(err, &notifErr))
	assert.Equal(t, "auth", notifErr.Type)
	assert.Equal(t, http.StatusForbidden, notifErr.StatusCode)
}

func TestNotifyUnmatched(t *testing.T) {
	srv, got := newServer(t, http.StatusOK)
	client := NewClient(srv.URL, "networth", true, "")

	client.NotifyUnmatched(context.Background(), "bank_accounts", nil)
	assert.Empty(t, *got)

	client.NotifyUnmatched(context.Background(), "bank_accounts", []string{"mb_Savings", "nab_Offset"})
	require.Len(t, *got, 1)
	assert.Equal(t, "2 accounts have no column in bank_accounts\n• mb_Savings\n• nab_Offset", (*got)[0].body)
}

func TestNotifyUnmatchedSwallowsErrors(t *testing.T) {
	srv, got := newServer(t, http.StatusInternalServerError)
	client := NewClient(srv.URL, "networth", true, "")

	client.NotifyUnmatched(context.Background(), "super", []string{"x_y"})
	assert.Len(t, *got, 1)
}

func TestFormatUnmatchedMessageTruncates(t *testing.T) {
	keys := make([]string, 12)
	for i := range keys {
		keys[i] = fmt.Sprintf("site_%d", i)
	}

	msg := formatUnmatchedMessage("credit", keys)
	assert.Contains(t, msg, "12 accounts have no column in credit")
	assert.Contains(t, msg, "• site_9")
	assert.NotContains(t, msg, "site_10")
	assert.Contains(t, msg, "... and 2 more")
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *Client
	assert.False(t, client.Enabled())
	client.NotifyUnmatched(context.Background(), "credit", []string{"a"})
}
