package goghostex

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// HttpResponse keeps the headers next to the body, the rate limit usage
// headers are read on every status code.
type HttpResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func NewHttpRequest(
	ctx context.Context,
	client *http.Client,
	reqType,
	reqUrl,
	postData string,
	requestHeaders map[string]string,
) (*HttpResponse, error) {
	req, err := http.NewRequestWithContext(ctx, reqType, reqUrl, strings.NewReader(postData))
	if err != nil {
		return nil, errors.Wrapf(err, "build request %s %s", reqType, reqUrl)
	}
	req.Header.Set("User-Agent", DEFAULT_USER_AGENT)
	for k, v := range requestHeaders {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", reqType, reqUrl)
	}
	defer resp.Body.Close()

	bodyData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	var response = &HttpResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       bodyData,
	}
	if resp.StatusCode != http.StatusOK {
		return response, newResponseError(resp.StatusCode, bodyData)
	}
	return response, nil
}

// newResponseError decodes the exchange error body {"code":-1121,"msg":"Invalid symbol."}
// and falls back to the raw text.
func newResponseError(status int, body []byte) Error {
	var content = struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}{}
	if err := json.Unmarshal(body, &content); err == nil && content.Msg != "" {
		return NewError(content.Code, status, "HttpStatusCode:%d, Code:%d, Desc:%s", status, content.Code, content.Msg)
	}
	return NewError(0, status, "HttpStatusCode:%d, Desc:%s", status, string(body))
}
