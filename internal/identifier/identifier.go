// Package identifier 生成组织作用域的单据编号（PR-/PO-）。
// 格式: {prefix}-{org后缀}-{base36时间戳}-{4位随机hex}，
// 不保证密码学唯一，碰撞概率可忽略。
package identifier

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixRequest       = "PR"
	PrefixPurchaseOrder = "PO"
)

// Generate 生成带前缀的组织作用域编号
func Generate(prefix, orgID string) string {
	return strings.Join([]string{
		prefix,
		sanitizeOrgID(orgID),
		timestampSegment(),
		randomSegment(4),
	}, "-")
}

// NewRequestNumber 采购申请编号
func NewRequestNumber(orgID string) string {
	return Generate(PrefixRequest, orgID)
}

// NewPONumber 采购订单编号
func NewPONumber(orgID string) string {
	return Generate(PrefixPurchaseOrder, orgID)
}

// sanitizeOrgID 大写、去掉非字母数字、取末6位，空值回退"ORG"
func sanitizeOrgID(orgID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(orgID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > 6 {
		s = s[len(s)-6:]
	}
	if s == "" {
		return "ORG"
	}
	return s
}

func timestampSegment() string {
	ms := time.Now().UnixMilli()
	return strings.ToUpper(strconv.FormatInt(ms, 36))
}

func randomSegment(length int) string {
	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand 失败时退化为时间熵，编号仍可用
		return timestampSegment()[:length]
	}
	s := strings.ToUpper(hex.EncodeToString(buf))
	return s[:length]
}
