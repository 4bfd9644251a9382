// Package remote fetches the authoritative product list from the upstream
// REST endpoint.
package remote

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/averix-dev/catalog-gateway/internal/domain/catalog"
	"github.com/averix-dev/catalog-gateway/internal/domain/product"
)

// maxResponseSize bounds the upstream body read (the catalog is a list of
// small records; anything larger is a misbehaving endpoint).
const maxResponseSize = 16 << 20

var _ catalog.Source = (*Client)(nil)

// Client issues one GET per Fetch against a fixed products URL and maps the
// response records into domain products.
type Client struct {
	url  string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented client, used by tests and
// by callers that configure their own transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a Client for the given endpoint URL. The default
// transport is otel-instrumented with a 30 s overall timeout.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url: url,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the current product list. The upstream's ordering is
// preserved; a non-200 status or transport error is returned as-is for the
// orchestration layer to classify.
func (c *Client) Fetch(ctx context.Context) ([]product.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch products")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("products endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	products, err := decodeProducts(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return products, nil
}

// decodeProducts parses the upstream JSON array. Each element carries
// {id: integer, title, description, price: number, image}; id is stringified
// and title/image map to Name/ImageURL.
func decodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)

	var products []product.Product
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, err
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			var id int64
			if id, err = d.Int64(); err != nil {
				return err
			}
			p.ID = strconv.FormatInt(id, 10)
		case "title":
			p.Name, err = d.Str()
		case "description":
			p.Description, err = d.Str()
		case "price":
			var num jx.Num
			if num, err = d.Num(); err != nil {
				return err
			}
			p.Price, err = decimal.NewFromString(string(num))
		case "image":
			p.ImageURL, err = d.Str()
		default:
			return d.Skip()
		}
		return err
	})
	return p, err
}
