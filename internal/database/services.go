package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
)

// UpsertService creates or refreshes a catalog entry
func (s *Service) UpsertService(ctx context.Context, service models.Service) error {
	_, err := s.db.ExecContext(ctx, queryUpsertService, service.Id, service.Name, string(service.Kind), service.Asset)
	if err != nil {
		zap.L().Error("Failed to upsert service", zap.String("service_id", service.Id), zap.Error(err))
		return storageErr("unable to upsert service", err)
	}

	zap.L().Debug("Service upserted",
		zap.String("service_id", service.Id),
		zap.String("name", service.Name),
		zap.String("kind", string(service.Kind)))
	return nil
}

func (s *Service) GetService(ctx context.Context, serviceId string) (*models.Service, error) {
	var service models.Service
	var kind string
	err := s.db.QueryRowContext(ctx, queryGetService, serviceId).Scan(
		&service.Id, &service.Name, &kind, &service.Asset, &service.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: service %s", store.ErrNotFound, serviceId)
		}
		return nil, storageErr("unable to query service", err)
	}
	service.Kind = models.ServiceKind(kind)
	return &service, nil
}
