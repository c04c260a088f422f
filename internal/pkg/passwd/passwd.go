package passwd

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash 计算密码的 sha256 十六进制摘要。必须是确定性的：
// 旧数据里的明文检测依赖同一输入得到同一摘要。
func Hash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// Verify 校验密码。stored 是已存的值：正常情况是摘要；
// 历史数据（手工录入的表格）可能直接存着明文，此时按明文相等判定，
// legacy 置 true，调用方负责把存储值改写成摘要。
func Verify(password, stored string) (ok bool, legacy bool) {
	if stored == "" {
		return false, false
	}
	if Hash(password) == stored {
		return true, false
	}
	if password == stored {
		return true, true
	}
	return false, false
}
