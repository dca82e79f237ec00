// Copyright 2026 JSONSage Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package testutil 提供 jsonsage 测试的共享工具和辅助函数。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 断言工具: AssertJSONEqual / AssertSchemaJSON / AssertContains
  - 异步断言: AssertEventuallyTrue，支持超时轮询等待条件满足
  - 数据工具: MustJSON / MustParseSchema

# 子包

  - testutil/mocks: MockProvider（llm.Provider），支持脚本化响应、
    前 N 次失败与调用计数
  - testutil/fixtures: 预置 Schema 文本与 ChatResponse 样例

# 使用示例

	ctx := testutil.TestContext(t)
	provider := mocks.NewMockProvider().WithResponse(fixtures.EnhancedPersonSchema)
	client := enhance.New(provider, zap.NewNop())
*/
package testutil
