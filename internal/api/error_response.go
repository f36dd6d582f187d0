// Package api はHTTPレイヤーで共有するレスポンス型を定義します。
package api

// ErrorResponse は全エンドポイント共通のエラーレスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}
