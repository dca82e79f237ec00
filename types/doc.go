// Copyright (c) JSONSage Authors.
// Licensed under the MIT License.

/*
Package types 提供 jsonsage 的全局共享错误类型。

# 概述

types 是最底层的公共包，不依赖任何内部包。schema、enhance、pipeline、
api 与 cmd 通过同一套 Error / ErrorCode 表达失败，避免循环依赖。

# 错误分类

  - 输入错误：INVALID_INPUT / INVALID_JSON（IsInputError）
  - 远程服务错误：API_ERROR / NETWORK_ERROR / AUTHENTICATION /
    RATE_LIMITED / UPSTREAM_ERROR（IsRemoteServiceError）
  - 本地错误：INVALID_CONFIGURATION / INTERNAL_ERROR / UNKNOWN_ERROR

校验失败不是错误，而是以 schema.Result 数据返回。
*/
package types
