package s3

import "context"

// PresignedPost описывает капабилити на одну загрузку: URL и поля формы,
// которые клиент обязан приложить к POST-запросу.
type PresignedPost struct {
	URL    string            `json:"url"`
	Fields map[string]string `json:"fields"`
}

// Storage определяет интерфейс объектного хранилища для ядра.
// Ядро оперирует непрозрачными ключами, байты туда не ходят.
type Storage interface {
	IssueUploadHandle(ctx context.Context, ownerID string, size int64, key string, location *string) (*PresignedPost, error)
	IssueDownloadHandle(ctx context.Context, ownerID, key, displayName string, location *string) (string, error)
	IssuePhotoUploadHandle(ctx context.Context, ownerID string, size int64) (*PresignedPost, error)
	IssuePhotoDownloadHandle(ctx context.Context, ownerID string) (string, error)
	DeleteObject(ctx context.Context, ownerID, key string, location *string) error
}
