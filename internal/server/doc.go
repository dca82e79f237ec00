// 版权所有 2026 JSONSage Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供 HTTP/HTTPS 服务器生命周期管理，支持非阻塞启动与优雅关闭。

# 核心类型

  - Manager：封装 net/http.Server 与 net.Listener，提供
    Start/Shutdown/Wait 生命周期方法。jsage serve 为 API 与
    Prometheus 指标各启动一个 Manager。
  - Config：监听地址、读写超时、最大请求头大小、优雅关闭超时，
    以及可选的 *tls.Config。

# 主要能力

  - 非阻塞启动：Start 在后台 goroutine 中运行服务。
  - 优雅关闭：Shutdown 在配置的超时内排空进行中的请求。
  - 上下文驱动：Wait 在 ctx 结束或服务异常退出时触发关闭，
    信号处理交给调用方（signal.NotifyContext）。
*/
package server
