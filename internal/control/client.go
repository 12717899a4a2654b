package control

import (
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client is lmapctl's thin HTTP-over-unix-socket wrapper around the
// control API, spec.md §6/§7. help and version never construct one —
// they are answered locally.
type Client struct {
	rc *resty.Client
}

// NewClient returns a Client bound to sockPath via a unix domain socket
// transport; the base URL is a fixed placeholder host since only the
// path is meaningful once the transport is pinned to one socket file.
func NewClient(sockPath string) *Client {
	rc := resty.New().
		SetTransport(unixTransport(sockPath)).
		SetBaseURL("http://unix")
	return &Client{rc: rc}
}

func (c *Client) Reload() error {
	resp, err := c.rc.R().Post("/reload")
	return checkResponse(resp, err)
}

func (c *Client) Clean() error {
	resp, err := c.rc.R().Post("/clean")
	return checkResponse(resp, err)
}

func (c *Client) Validate() error {
	resp, err := c.rc.R().Post("/validate")
	return checkResponse(resp, err)
}

func (c *Client) Shutdown() error {
	resp, err := c.rc.R().Post("/shutdown")
	return checkResponse(resp, err)
}

func (c *Client) Status() (string, error) {
	resp, err := c.rc.R().Get("/status")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

func (c *Client) Running() (string, error) {
	resp, err := c.rc.R().Get("/running")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

func (c *Client) Report() (string, error) {
	resp, err := c.rc.R().Get("/report")
	if err := checkResponse(resp, err); err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("control client: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("control client: %s: %s", resp.Status(), string(resp.Body()))
	}
	return nil
}
