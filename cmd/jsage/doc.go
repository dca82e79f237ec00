// Copyright 2026 JSONSage Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package main 提供 jsage 命令行程序入口。

# 概述

jsage 基于 cobra 组织子命令：generate（从描述或示例 JSON 生成 schema）、
validate（按 schema 校验数据）、check（元校验 schema）、serve（HTTP API）
与 version。配置按 默认值 → YAML 文件 → 环境变量 的顺序合并。

# 核心类型

  - app        — 一次执行的 IO、环境查找与 Provider 工厂，测试可替换
  - Server     — serve 子命令的主服务器，管理 API 与 Metrics 双端口
  - Middleware — HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 中间件链：Recovery、RequestID、OTelTracing、SecurityHeaders、
    RequestLogger、MetricsMiddleware、RateLimiter（基于 IP）、
    APIKeyAuth（X-API-Key / Bearer）、BodyLimit
  - 错误输出：INVALID_JSON 单独提示，--debug 或 DEBUG 环境变量打印错误链
  - 退出码：0 成功，1 失败或校验未通过，2 参数错误
  - 优雅关闭：SIGINT/SIGTERM → 关闭 HTTP 与 Metrics → 刷新遥测
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
