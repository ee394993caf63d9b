// Package config 提供 StudyFlow 的配置加载。
//
// 加载顺序为 默认值 → YAML 文件 → 环境变量（前缀 STUDYFLOW），
// 凭据另外兼容 GEMINI_API_KEY。配置在启动时加载一次，运行期不变。
package config
