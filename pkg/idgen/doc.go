// Package idgen 提供资源 ID 生成器
//
// 标签和用户使用 Sonyflake 算法生成全局唯一且递增的 ID，
// 广告沿用随机 UUID（与历史数据保持一致，广告 ID 不要求有序）。
//
// 生成的 ID 格式：
//   - 标签 ID: tag-{递增数字}
//   - 用户 ID: u-{递增数字}
//   - 广告 ID: ad-{uuid v4}
//
// 使用方式：
//
//	// 使用包级别的便捷函数（默认生成器）
//	tagID, err := idgen.GenerateTagID()
//	// tagID: "tag-1234567890"
//
//	// 或创建独立的生成器
//	gen := idgen.New()
//	adID := gen.GenerateAdID()
package idgen
