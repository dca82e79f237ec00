// Copyright (c) JSONSage Authors.
// Licensed under the MIT License.

/*
Package enhance 通过远程文本生成服务为 Schema 补充描述与约束。

# 两种调用约定

  - Enhance / EnhanceDetailed: 失败即降级（fail-open）。传输失败、空响应、
    非 JSON 文本或不满足元结构的 JSON 都会在重试耗尽后返回原始 Schema，
    从不向调用方返回错误。
  - Draft: 根据自由文本描述生成初始 Schema。重试耗尽后将最后一次错误
    包装为 RemoteServiceError 返回。

两者共用同一个 retry.Retryer，区别只在于选择 retry.DoOrDegrade
还是 retry.DoWithResultTyped。

# 请求链路

每次调用分配一个 uuid 作为请求 ID，贯穿日志与 span。每次尝试前可选地
经过 golang.org/x/time/rate 限流；调用级凭证通过
llm.WithCredentialOverride 传递给 Provider。
*/
package enhance
