package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, request{method: http.MethodGet, path: "/categories", cache: ResourceCategories}, &out)
	return out, err
}

func (c *Client) CategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var out Category
	path := "/categories/" + url.PathEscape(slug)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, cache: ResourceCategories}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Products(ctx context.Context, filter ProductFilter) (*ProductPage, error) {
	var out ProductPage
	req := request{method: http.MethodGet, path: "/products", query: filter.values(), cache: ResourceProducts}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a free text product search. An empty page is returned for a
// blank query without touching the network.
func (c *Client) Search(ctx context.Context, query string, page, pageSize int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &ProductPage{Items: []Product{}, Page: 1, PageSize: pageSize}, nil
	}
	q := url.Values{"q": {query}}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	var out ProductPage
	if err := c.do(ctx, request{method: http.MethodGet, path: "/products/search", query: q, cache: ResourceSearch}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var out Product
	path := "/products/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, cache: ResourceProduct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProductByCode(ctx context.Context, code string) (*Product, error) {
	var out Product
	path := "/products/code/" + url.PathEscape(code)
	if err := c.do(ctx, request{method: http.MethodGet, path: path, cache: ResourceProduct}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Banners(ctx context.Context) ([]Banner, error) {
	var out []Banner
	err := c.do(ctx, request{method: http.MethodGet, path: "/banners", cache: ResourceBanners}, &out)
	return out, err
}
