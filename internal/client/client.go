// Package client implements the HTTP+JSON client for the ProcurePay API.
// Every method issues one atomic call, attaches the session's bearer token,
// and returns a typed *Error on any of the four failure kinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"procurepay/internal/config"
	"procurepay/internal/session"
)

// Client talks to one ProcurePay backend. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Session
	log     *logrus.Logger
}

// New builds a client against cfg.BaseURL with cfg.Timeout applied to every
// call, so a hung request fails instead of loading forever.
func New(cfg config.Config, sess *session.Session, log *logrus.Logger) *Client {
	if log == nil {
		log = config.NewLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		session: sess,
		log:     log,
	}
}

// Session exposes the session the client authenticates with.
func (c *Client) Session() *session.Session { return c.session }

// listEnvelope is the paginated list shape some deployments return; others
// send a bare JSON array. decodeList accepts both.
type listEnvelope struct {
	Count   int             `json:"count"`
	Results json.RawMessage `json:"results"`
}

func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env listEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, err
		}
		if env.Results == nil {
			return nil, fmt.Errorf("list envelope missing results field")
		}
		data = env.Results
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// detailBody is the DRF-style error payload.
type detailBody struct {
	Detail string `json:"detail"`
}

func (c *Client) newRequest(ctx context.Context, op, method, path string, body io.Reader, contentType string, auth bool) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		token, err := c.session.Token()
		if err != nil {
			return nil, &Error{Kind: KindAuth, Op: op, Err: err}
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// do executes req and returns the raw body of a 2xx response.
func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "url": req.URL.String()}).WithError(err).Warn("api call failed")
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindHTTP
		if resp.StatusCode == http.StatusUnauthorized {
			kind = KindAuth
		}
		var detail detailBody
		_ = json.Unmarshal(data, &detail)
		c.log.WithFields(logrus.Fields{
			"op":     op,
			"status": resp.StatusCode,
			"detail": detail.Detail,
		}).Warn("api call rejected")
		return nil, &Error{Kind: kind, Op: op, StatusCode: resp.StatusCode, Detail: detail.Detail}
	}

	return data, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := c.newRequest(ctx, op, http.MethodGet, path, nil, "", true)
	if err != nil {
		return err
	}
	data, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

func (c *Client) getList(ctx context.Context, op, path string, decode func([]byte) error) error {
	req, err := c.newRequest(ctx, op, http.MethodGet, path, nil, "", true)
	if err != nil {
		return err
	}
	data, err := c.do(op, req)
	if err != nil {
		return err
	}
	if err := decode(data); err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any, auth bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindDecode, Op: op, Err: err}
	}
	req, err := c.newRequest(ctx, op, http.MethodPost, path, bytes.NewReader(payload), "application/json", auth)
	if err != nil {
		return err
	}
	data, err := c.do(op, req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: err}
		}
	}
	return nil
}

func (c *Client) delete(ctx context.Context, op, path string) error {
	req, err := c.newRequest(ctx, op, http.MethodDelete, path, nil, "", true)
	if err != nil {
		return err
	}
	_, err = c.do(op, req)
	return err
}

// FileUpload is an attachment streamed into a multipart form.
type FileUpload struct {
	Field    string
	Filename string
	Content  io.Reader
}

// sendMultipart posts/puts form fields plus optional file parts and decodes
// the response into out.
func (c *Client) sendMultipart(ctx context.Context, op, method, path string, fields map[string]string, files []FileUpload, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: err}
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return &Error{Kind: KindTransport, Op: op, Err: fmt.Errorf("read %s: %w", f.Field, err)}
		}
	}
	if err := writer.Close(); err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}

	req, err := c.newRequest(ctx, op, method, path, &buf, writer.FormDataContentType(), true)
	if err != nil {
		return err
	}
	data, err := c.do(op, req)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindDecode, Op: op, Err: err}
		}
	}
	return nil
}
