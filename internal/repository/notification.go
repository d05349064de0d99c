package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/awardrobe/pricetracker/internal/model"
	"github.com/awardrobe/pricetracker/internal/storage/db"
)

type CreateNotificationParams struct {
	UserID              string
	ProductID           int64
	VariantID           *int64
	PriceThresholdCents *int64
	NotifyOnRestock     bool
}

type NotificationRepository interface {
	WithDB(db db.DB) NotificationRepository
	CreateNotification(ctx context.Context, params CreateNotificationParams) (model.ProductNotification, error)
	ListNotificationsByProduct(ctx context.Context, productPublicID uuid.UUID) ([]model.ProductNotification, error)
}

type notificationRepository struct {
	db db.DB
}

func NewNotificationRepository(db db.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r notificationRepository) WithDB(db db.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r notificationRepository) CreateNotification(ctx context.Context, params CreateNotificationParams) (model.ProductNotification, error) {
	publicID, err := uuid.NewV7()
	if err != nil {
		return model.ProductNotification{}, fmt.Errorf("new notification id: %w", err)
	}

	n := model.ProductNotification{
		PublicID:            publicID,
		UserID:              params.UserID,
		ProductID:           params.ProductID,
		PriceThresholdCents: params.PriceThresholdCents,
		NotifyOnRestock:     params.NotifyOnRestock,
		CreatedAt:           time.Now(),
	}

	if err := r.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO product_notifications
				(public_id, user_id, product_id, variant_id, price_threshold_cents, notify_on_restock, created_at)
			VALUES
				(@public_id, @user_id, @product_id, @variant_id, @price_threshold_cents, @notify_on_restock, @created_at)
			RETURNING id, variant_id
		)
		SELECT i.id, v.public_id
		FROM inserted i
		LEFT JOIN product_variants v ON v.id = i.variant_id
	`, pgx.NamedArgs{
		"public_id":             n.PublicID,
		"user_id":               n.UserID,
		"product_id":            n.ProductID,
		"variant_id":            params.VariantID,
		"price_threshold_cents": n.PriceThresholdCents,
		"notify_on_restock":     n.NotifyOnRestock,
		"created_at":            n.CreatedAt,
	}).Scan(&n.ID, &n.VariantPublicID); err != nil {
		return model.ProductNotification{}, fmt.Errorf("insert notification: %w", err)
	}

	return n, nil
}

func (r notificationRepository) ListNotificationsByProduct(ctx context.Context, productPublicID uuid.UUID) ([]model.ProductNotification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT n.id, n.public_id, n.user_id, n.product_id, v.public_id,
			n.price_threshold_cents, n.notify_on_restock, n.created_at
		FROM product_notifications n
		JOIN products p ON p.id = n.product_id
		LEFT JOIN product_variants v ON v.id = n.variant_id
		WHERE p.public_id = @product_public_id
		ORDER BY n.id
	`, pgx.NamedArgs{"product_public_id": productPublicID})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.ProductNotification
	for rows.Next() {
		var n model.ProductNotification
		if err := rows.Scan(
			&n.ID, &n.PublicID, &n.UserID, &n.ProductID, &n.VariantPublicID,
			&n.PriceThresholdCents, &n.NotifyOnRestock, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}
