package oauth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// tokenTransport rewrites expires_in of a successful token response into an
// integer number of seconds. x/oauth2 fails the whole exchange on an expiry
// it cannot decode, while an unusable expiry only means "unknown" here.
type tokenTransport struct {
	base http.RoundTripper
}

// newTokenHTTPClient делает копию httpClient для token endpoint
func newTokenHTTPClient(httpClient *http.Client) *http.Client {
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Transport:     &tokenTransport{base: base},
		CheckRedirect: httpClient.CheckRedirect,
		Jar:           httpClient.Jar,
		Timeout:       httpClient.Timeout,
	}
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	body = normalizeExpiresIn(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// normalizeExpiresIn leaves bodies that are not JSON objects untouched.
func normalizeExpiresIn(body []byte) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return body
	}
	raw, ok := fields["expires_in"]
	if !ok {
		return body
	}

	fields["expires_in"] = json.RawMessage(strconv.FormatInt(parseRawExpiresIn(raw), 10))
	out, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return out
}

func parseRawExpiresIn(raw json.RawMessage) int64 {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0
	}
	return parseExpiresIn(v)
}

// parseExpiresIn accepts a JSON number or a numeric string. Fractions are
// truncated. Missing, invalid and negative values become 0.
func parseExpiresIn(v any) int64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			f = float64(i)
			break
		}
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = n
	default:
		return 0
	}

	switch {
	case math.IsNaN(f) || math.IsInf(f, 0) || f < 0:
		return 0
	case f > math.MaxInt32:
		return math.MaxInt32
	}
	return int64(f)
}
