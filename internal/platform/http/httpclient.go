// Package http holds the outbound HTTP client shared by the object storage
// backends.
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部サービス（S3互換ストレージ）向けのHTTPクライアントを作成します。
//
//   - Proxy: HTTP_PROXY などの環境変数に従う
//   - Dialer.Timeout: TCP接続タイムアウト
//   - MaxIdleConnsPerHost: 同一バケットへの接続を使い回す
//   - ResponseHeaderTimeout: 応答の無いエンドポイントで待ち続けない
//   - Client.Timeout: アップロード本体を含むリクエスト全体の上限
//
// http.DefaultClient にはタイムアウトがないため使わないこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
