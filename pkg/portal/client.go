package portal

import (
	"context"
	"net/url"
	"strings"
)

const (
	LandingPath     = "/home/Home"
	stationEndpoint = "/home/Home/getStation"
	tripEndpoint    = "/booking/booking/getTrip"
)

// Page is a live portal session. Requests made through it carry the cookies and
// headers established when the portal was loaded.
type Page interface {
	PostForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error)
	ViewState(ctx context.Context) (string, error)
}

type Client struct {
	Page    Page
	BaseURL string
}

func NewClient(page Page, baseURL string) *Client {
	return &Client{
		Page:    page,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

func LandingURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + LandingPath
}

func (c *Client) endpoint(path string) string {
	return c.BaseURL + path
}

type envelope[T any] struct {
	Data []T `json:"data"`
}
