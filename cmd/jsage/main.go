// =============================================================================
// jsage 主入口
// =============================================================================
// 使用方法:
//
//	jsage generate -d "a blog post with title and tags"   # 从描述生成 schema
//	jsage generate -f example.json -o schema.json         # 从示例 JSON 推断并增强
//	jsage validate -d data.json -s schema.json            # 校验数据
//	jsage check -s schema.json                            # 元校验 schema
//	jsage serve --config jsonsage.yaml                    # 启动 HTTP API
//	jsage version
// =============================================================================

package main

import (
	"context"
	"io"
	"os"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run 执行命令并返回进程退出码
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)
	return a.execute(ctx, args)
}
