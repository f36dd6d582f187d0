// Package http provides the outbound HTTP client used for market data providers.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent on every provider request unless overridden.
const DefaultUserAgent = "stock-backtest/1.0"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: 同一プロバイダへの連続リクエストで接続を再利用
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// userAgent が空の場合は DefaultUserAgent を使用します。
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: t, userAgent: userAgent},
	}
}

// userAgentTransport sets User-Agent on requests that do not carry one.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
