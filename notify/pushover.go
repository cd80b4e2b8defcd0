// Copyright (c) 2023 BVK Chaitanya

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// PushoverURL is the message api endpoint.
var PushoverURL = url.URL{
	Scheme: "https",
	Host:   "api.pushover.net",
	Path:   "/1/messages.json",
}

// pushoverMaxLen is the message size limit of the pushover api.
const pushoverMaxLen = 1024

type PushoverKeys struct {
	ApplicationKey string `json:"application_key"`
	UserKey        string `json:"user_key"`
}

func (v *PushoverKeys) Check() error {
	if len(v.ApplicationKey) == 0 || len(v.UserKey) == 0 {
		return fmt.Errorf("pushover application and user keys cannot be empty")
	}
	return nil
}

type Pushover struct {
	token string
	user  string

	endpoint string

	httpClient *http.Client
}

type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

func NewPushover(keys *PushoverKeys) (*Pushover, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	c := &Pushover{
		token:      keys.ApplicationKey,
		user:       keys.UserKey,
		endpoint:   PushoverURL.String(),
		httpClient: &http.Client{Timeout: time.Minute},
	}
	return c, nil
}

// SendMessage posts the message as a form. Messages longer than the api
// limit are truncated on a line boundary.
func (c *Pushover) SendMessage(ctx context.Context, at time.Time, msg string) error {
	if len(msg) > pushoverMaxLen {
		msg = msg[:pushoverMaxLen]
		if i := strings.LastIndexByte(msg, '\n'); i > 0 {
			msg = msg[:i]
		}
	}

	form := make(url.Values)
	form.Set("token", c.token)
	form.Set("user", c.user)
	form.Set("title", "krakenscan")
	form.Set("message", msg)
	form.Set("timestamp", strconv.FormatInt(at.Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not create pushover request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send pushover message: %w", err)
	}
	defer resp.Body.Close()

	r := new(pushoverResponse)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return fmt.Errorf("could not decode pushover response (http status %d): %w", resp.StatusCode, err)
	}
	if r.Status == 1 {
		return nil
	}
	if len(r.Errors) != 0 {
		return fmt.Errorf("pushover rejected the message (http status %d): %s", resp.StatusCode, strings.Join(r.Errors, "; "))
	}
	return fmt.Errorf("pushover rejected the message with http status %d", resp.StatusCode)
}
