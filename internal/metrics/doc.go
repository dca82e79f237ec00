// 版权所有 2026 JSONSage Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集，覆盖 HTTP、远程调用、
Schema 增强、缓存与校验。

# 核心类型

  - Collector：持有 Counter、Histogram、Gauge 向量指标，
    同时满足 enhance.Recorder 与 pipeline.Recorder。

# 主要能力

  - HTTP 指标：按 method/path/status 分组，状态码归类为 2xx/3xx/4xx/5xx。
  - 远程调用指标：请求总数、耗时、Token 用量，按 provider/model 分组。
  - 增强指标：按结果（enhanced/degraded/skipped/drafted/failed）计数，
    记录每次调用的尝试次数分布。
  - 缓存指标：命中与未命中计数，条目数 Gauge。
  - 校验指标：按 kind（schema/data）与 result 分组。

指标注册到调用方传入的 Registerer，测试中可使用独立 Registry。
*/
package metrics
