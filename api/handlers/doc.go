// Copyright (c) JSONSage Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 jsonsage HTTP API 的请求处理器实现。

# 核心类型

  - SchemaHandler  — schema 生成、示例转换、元校验与数据校验
  - HealthHandler  — 存活与就绪探针（/health, /healthz, /ready）
  - Response       — 统一 JSON 响应结构（success + data + error + timestamp + request_id）
  - ErrorInfo      — 结构化错误信息，含 code、message、details
  - ResponseWriter — 包装 http.ResponseWriter 以捕获状态码与响应大小
  - HealthCheck    — 可插拔就绪检查接口

# 错误映射

输入错误（INVALID_INPUT、INVALID_JSON）返回 400，远程服务错误返回 502，
其他错误返回 500 且不暴露底层原因。校验失败不是错误：结果放在 data 中，
状态码为 200。
*/
package handlers
