package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/sonyflake"
)

// Generator ID 生成器
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		// 没有私有网段地址时默认的 MachineID 会失败（容器、CI 环境），退化为固定机器号
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MachineID: func() (uint16, error) { return 1, nil },
		})
	}

	return &Generator{
		sf: sf,
	}
}

// generateIDWithPrefix 生成带前缀的 ID
func (g *Generator) generateIDWithPrefix(prefix, errorMsg string) (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("%s: %w", errorMsg, err)
	}
	return fmt.Sprintf("%s-%d", prefix, id), nil
}

// GenerateTagID 生成标签 ID（格式：tag-{递增 ID}）
func (g *Generator) GenerateTagID() (string, error) {
	return g.generateIDWithPrefix("tag", "generate tag ID")
}

// GenerateUserID 生成用户 ID（格式：u-{递增 ID}）
func (g *Generator) GenerateUserID() (string, error) {
	return g.generateIDWithPrefix("u", "generate user ID")
}

// GenerateAdID 生成广告 ID（格式：ad-{uuid}）
func (g *Generator) GenerateAdID() string {
	return "ad-" + uuid.NewString()
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// GenerateTagID 使用默认生成器生成标签 ID
func GenerateTagID() (string, error) {
	return DefaultGenerator().GenerateTagID()
}

// GenerateUserID 使用默认生成器生成用户 ID
func GenerateUserID() (string, error) {
	return DefaultGenerator().GenerateUserID()
}

// GenerateAdID 使用默认生成器生成广告 ID
func GenerateAdID() string {
	return DefaultGenerator().GenerateAdID()
}
