package catalog

import (
	"context"
	"fmt"
	"net/http"

	"github.com/guonaihong/gout"
	"github.com/guonaihong/gout/dataflow"
	"github.com/pkg/errors"
)

// Admin write operations proxied to the upstream API. Every call
// carries the operator's bearer token; product and story writes go out
// as multipart form data because they may include an image upload.

// Upload is an in-memory file attached to a multipart write.
type Upload struct {
	Field   string
	Name    string
	Content []byte
}

// MutationError is a non-2xx answer to an admin write. The body is
// kept so the admin panel can show the upstream message.
type MutationError struct {
	Status int
	Body   string
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("upstream rejected mutation: status %d: %s", e.Status, e.Body)
}

func flow(method, url string) *dataflow.DataFlow {
	switch method {
	case http.MethodPut:
		return gout.PUT(url)
	default:
		return gout.POST(url)
	}
}

func (c *Client) adminURL(resource string, id int64) string {
	if id > 0 {
		return c.url(fmt.Sprintf("/%s/%d", resource, id))
	}
	return c.url("/" + resource)
}

// AdminList fetches a collection with admin credentials.
func (c *Client) AdminList(ctx context.Context, token, resource string, out interface{}) error {
	var (
		code int
		body []byte
	)
	err := gout.GET(c.adminURL(resource, 0)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": bearer(token)}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return errors.Wrapf(err, "load %s", resource)
	}
	if code != http.StatusOK {
		return &MutationError{Status: code, Body: string(body)}
	}
	return json.Unmarshal(body, out)
}

// CreateJSON posts a new entity encoded as JSON.
func (c *Client) CreateJSON(ctx context.Context, token, resource string, payload, out interface{}) error {
	return c.writeJSON(ctx, http.MethodPost, token, c.adminURL(resource, 0), payload, out)
}

// UpdateJSON puts an updated entity encoded as JSON.
func (c *Client) UpdateJSON(ctx context.Context, token, resource string, id int64, payload, out interface{}) error {
	return c.writeJSON(ctx, http.MethodPut, token, c.adminURL(resource, id), payload, out)
}

func (c *Client) writeJSON(ctx context.Context, method, token, url string, payload, out interface{}) error {
	var (
		code int
		body []byte
	)
	err := flow(method, url).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": bearer(token)}).
		SetJSON(payload).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return errors.Wrap(err, "admin mutation")
	}
	if code < 200 || code >= 300 {
		return &MutationError{Status: code, Body: string(body)}
	}
	if out != nil && len(body) > 0 {
		return json.Unmarshal(body, out)
	}
	return nil
}

// CreateMultipart posts a new entity as multipart form data with an
// optional image upload.
func (c *Client) CreateMultipart(ctx context.Context, token, resource string, fields map[string]string, file *Upload, out interface{}) error {
	return c.writeMultipart(ctx, http.MethodPost, token, c.adminURL(resource, 0), fields, file, out)
}

// UpdateMultipart puts an updated entity as multipart form data.
func (c *Client) UpdateMultipart(ctx context.Context, token, resource string, id int64, fields map[string]string, file *Upload, out interface{}) error {
	return c.writeMultipart(ctx, http.MethodPut, token, c.adminURL(resource, id), fields, file, out)
}

func (c *Client) writeMultipart(ctx context.Context, method, token, url string, fields map[string]string, file *Upload, out interface{}) error {
	form := gout.H{}
	for k, v := range fields {
		form[k] = v
	}
	if file != nil {
		form[file.Field] = gout.FormMem(file.Content)
	}

	var (
		code int
		body []byte
	)
	err := flow(method, url).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": bearer(token)}).
		SetForm(form).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return errors.Wrap(err, "admin mutation")
	}
	if code < 200 || code >= 300 {
		return &MutationError{Status: code, Body: string(body)}
	}
	if out != nil && len(body) > 0 {
		return json.Unmarshal(body, out)
	}
	return nil
}

// Delete removes an entity by id.
func (c *Client) Delete(ctx context.Context, token, resource string, id int64) error {
	var (
		code int
		body []byte
	)
	err := gout.DELETE(c.adminURL(resource, id)).
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetHeader(gout.H{"Authorization": bearer(token)}).
		Code(&code).
		BindBody(&body).
		Do()
	if err != nil {
		return errors.Wrapf(err, "delete %s/%d", resource, id)
	}
	if code < 200 || code >= 300 {
		return &MutationError{Status: code, Body: string(body)}
	}
	return nil
}
