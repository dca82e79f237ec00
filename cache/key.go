package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/BaSui01/jsonsage/schema"
)

// KeyPrefix 所有缓存键的前缀
const KeyPrefix = "jsonsage:schema:"

// HashKey 根据候选 schema 与描述文本生成缓存键
// 使用 sha256 的前 16 字节
func HashKey(s *schema.Schema, description string) string {
	payload := struct {
		Schema      *schema.Schema `json:"schema"`
		Description string         `json:"description"`
	}{s, description}

	data, err := json.Marshal(payload)
	if err != nil {
		// fallback: 使用 fmt.Sprintf 生成确定性字符串
		data = []byte(fmt.Sprintf("%#v|%s", s, description))
	}
	hash := sha256.Sum256(data)
	return KeyPrefix + hex.EncodeToString(hash[:16])
}
