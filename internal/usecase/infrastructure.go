package usecase

import (
	"context"

	"github.com/DRSN-tech/shop-backend/internal/domain"
)

// ImageRepository — низкоуровневое хранилище объектов изображений.
type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
	// ObjectURL возвращает публичный URL объекта по его ключу.
	ObjectURL(key string) string
}

type Mailer interface {
	SendLowStockAlert(ctx context.Context, payload *LowStockPayload) error
	SendDailySalesReport(ctx context.Context, report *DailySalesReport) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}
