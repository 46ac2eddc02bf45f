package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// HTTPFetcher polls GET {BaseURL}/preferences with a bearer token.
type HTTPFetcher struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (Preferences, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/preferences", nil)
	if err != nil {
		return Preferences{}, err
	}
	req.Header.Set("Authorization", "Bearer "+f.Token)

	resp, err := client.Do(req)
	if err != nil {
		return Preferences{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Preferences{}, fmt.Errorf("fetch preferences: status %d", resp.StatusCode)
	}

	var p Preferences
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

// WSWatcher subscribes to the server's preferences websocket. The token
// rides in the query string because browser websocket clients cannot set
// headers.
type WSWatcher struct {
	BaseURL string // http(s) base; rewritten to ws(s)
	Token   string
	Dialer  *websocket.Dialer
}

func (w *WSWatcher) Watch(ctx context.Context) (<-chan Preferences, error) {
	dialer := w.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	wsURL, err := w.endpoint()
	if err != nil {
		return nil, err
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, err
	}

	ch := make(chan Preferences, 4)

	// Closing the connection on ctx.Done unblocks the reader; both paths end
	// with the channel closed so the reconciler never leaks a leg.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(ch)
		defer conn.Close()
		for {
			var p Preferences
			if err := conn.ReadJSON(&p); err != nil {
				return
			}
			select {
			case ch <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (w *WSWatcher) endpoint() (string, error) {
	base := w.BaseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	u, err := url.Parse(base + "/ws/preferences")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", w.Token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
