package database

import (
	"context"
	"database/sql"
	"time"

	"wallet-ledger-go/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordAudit appends one entry to the audit trail
func (s *Service) RecordAudit(ctx context.Context, entry models.AuditLog) error {
	if entry.Id == "" {
		entry.Id = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, queryInsertAuditLog,
		entry.Id, entry.UserId, entry.Action, entry.Request, entry.Response,
		entry.Url, entry.Channel, entry.Device, entry.IpAddress, entry.CreatedAt)
	if err != nil {
		return storageErr("unable to insert audit log", err)
	}

	zap.L().Debug("Audit log recorded",
		zap.String("user_id", entry.UserId),
		zap.String("action", entry.Action))
	return nil
}

// GetAuditLogs returns the user's most recent audit entries, newest first
func (s *Service) GetAuditLogs(ctx context.Context, userId string, limit int) ([]models.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, queryGetAuditLogs, userId, limit)
	if err != nil {
		return nil, storageErr("unable to query audit logs", err)
	}
	defer closeRows(rows)

	var logs []models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var request, response, url, channel, device, ip sql.NullString
		err := rows.Scan(&entry.Id, &entry.UserId, &entry.Action, &request, &response,
			&url, &channel, &device, &ip, &entry.CreatedAt)
		if err != nil {
			return nil, storageErr("unable to scan audit log", err)
		}
		entry.Request = request.String
		entry.Response = response.String
		entry.Url = url.String
		entry.Channel = channel.String
		entry.Device = device.String
		entry.IpAddress = ip.String
		logs = append(logs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("error iterating audit rows", err)
	}
	return logs, nil
}
