// Package converter преобразует доменные сущности в модели таблиц PostgreSQL
// и обратно. Конвертеры написаны вручную и не тянут состояния.
package converter

import (
	"github.com/DRSN-tech/shop-backend/internal/domain"
	"github.com/DRSN-tech/shop-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:                 entity.ID,
		Name:               entity.Name,
		Price:              entity.Price,
		StockQuantity:      entity.StockQuantity,
		LowStockThreshold:  entity.LowStockThreshold,
		LowStockNotifiedAt: entity.LowStockNotifiedAt,
		CreatedAt:          entity.CreatedAt,
		UpdatedAt:          entity.UpdatedAt,
		DeletedAt:          entity.DeletedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:                 model.ID,
		Name:               model.Name,
		Price:              model.Price,
		StockQuantity:      model.StockQuantity,
		LowStockThreshold:  model.LowStockThreshold,
		LowStockNotifiedAt: model.LowStockNotifiedAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
		DeletedAt:          model.DeletedAt,
	}
}

func (ProductConverter) ImageToEntity(model *ProductImageModel) domain.ProductImage {
	return domain.ProductImage{
		ID:        model.ID,
		ProductID: model.ProductID,
		ObjectKey: model.ObjectKey,
		SortOrder: model.SortOrder,
	}
}

// CartConverter преобразует сущности Cart между domain и моделью PostgreSQL.
type CartConverter struct{}

func (CartConverter) ToEntity(model *CartModel) *domain.Cart {
	return &domain.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Status:    domain.CartStatus(model.Status),
		OrderedAt: model.OrderedAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		DeletedAt: model.DeletedAt,
	}
}

func (CartConverter) ItemToEntity(model *CartItemModel) domain.CartItem {
	return domain.CartItem{
		ID:        model.ID,
		CartID:    model.CartID,
		ProductID: model.ProductID,
		Quantity:  model.Quantity,
	}
}

// OrderConverter преобразует сущности Order между domain и моделью PostgreSQL.
type OrderConverter struct{}

func (OrderConverter) ToEntity(model *OrderModel) *domain.Order {
	return &domain.Order{
		ID:          model.ID,
		UserID:      model.UserID,
		CartID:      model.CartID,
		TotalAmount: model.TotalAmount,
		CreatedAt:   model.CreatedAt,
		DeletedAt:   model.DeletedAt,
	}
}

func (OrderConverter) ItemToEntity(model *OrderItemModel) domain.OrderItem {
	return domain.OrderItem{
		ID:        model.ID,
		OrderID:   model.OrderID,
		ProductID: model.ProductID,
		Quantity:  model.Quantity,
		UnitPrice: model.UnitPrice,
	}
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:                  entity.ID,
		EventID:             entity.EventID,
		EventType:           string(entity.EventType),
		AggregateID:         entity.AggregateID,
		Payload:             entity.Payload,
		Status:              string(entity.Status),
		CreatedAt:           entity.CreatedAt,
		ProcessingStartedAt: entity.ProcessingStartedAt,
		ProcessedAt:         entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:                  model.ID,
		EventID:             model.EventID,
		EventType:           usecase.OutboxEventType(model.EventType),
		AggregateID:         model.AggregateID,
		Payload:             model.Payload,
		Status:              usecase.OutboxStatus(model.Status),
		CreatedAt:           model.CreatedAt,
		ProcessingStartedAt: model.ProcessingStartedAt,
		ProcessedAt:         model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	entities := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		entities = append(entities, c.ToEntity(model))
	}
	return entities
}
