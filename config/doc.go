// Package config 提供 jsonsage 的配置管理功能。
//
// 配置优先级: 默认值 → YAML 文件 → JSONSAGE_ 前缀环境变量。
// 远程服务凭证在 JSONSAGE_LLM_API_KEY 未设置时回退到 DEEPSEEK_API_KEY。
package config
