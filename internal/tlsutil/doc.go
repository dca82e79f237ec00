// Package tlsutil 为 DeepSeek 客户端与 jsage HTTP 服务提供统一的 TLS 配置
// （TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
