// Copyright (c) JSONSage Authors.
// Licensed under the MIT License.

/*
Package pipeline 编排 Schema 的生成、推断、增强、缓存与校验。

# 入口

  - GenerateSchema: 描述文本 → Draft → 选项 → 缓存增强 → 校验
  - ConvertJSONToSchema: 示例 JSON → 类型推断 → 可选缓存增强 → 校验
  - ValidateJSON / ValidateSchema: 数据校验与元结构校验
  - Cleanup / RunCleanup: 清理过期缓存

# 缓存

键为 cache.HashKey(候选 schema, 描述)。命中时直接返回缓存副本，
不访问远程服务；未命中时同 key 的并发请求经 singleflight 合并为一次增强。
只有成功且通过校验的增强结果才会写入缓存，降级结果不缓存。
*/
package pipeline
