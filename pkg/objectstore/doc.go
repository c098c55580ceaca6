// Package objectstore 提供按 bucket 组织的对象存储
//
// LocalStore 把对象保存在本地目录 {root}/{bucket}/{name}，
// 公开地址为 {publicBaseURL}/media/{bucket}/{name}。
//
//	store, err := objectstore.NewLocal("/var/lib/adshelf/media", "https://adshelf.example.com")
//	if err != nil {
//		return err
//	}
//	if err := store.Upload(ctx, "ads-media", "acme_2024-06-01T12-00-00-000Z.mp4", file, "video/mp4"); err != nil {
//		return err
//	}
//	url := store.PublicURL("ads-media", "acme_2024-06-01T12-00-00-000Z.mp4")
package objectstore
