package database

import (
	"context"
	"fmt"

	"wallet-ledger-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.BalanceSnapshot, error) {
	var snapshot models.BalanceSnapshot
	var previousStr, bookStr, currentStr string
	err := row.Scan(&snapshot.Id, &snapshot.UserId, &previousStr, &bookStr, &currentStr,
		&snapshot.Status, &snapshot.Reference, &snapshot.CreatedAt)
	if err != nil {
		return nil, err
	}

	if snapshot.Previous, err = decimal.NewFromString(previousStr); err != nil {
		return nil, fmt.Errorf("failed to parse previous '%s': %w", previousStr, err)
	}
	if snapshot.Book, err = decimal.NewFromString(bookStr); err != nil {
		return nil, fmt.Errorf("failed to parse book '%s': %w", bookStr, err)
	}
	if snapshot.Current, err = decimal.NewFromString(currentStr); err != nil {
		return nil, fmt.Errorf("failed to parse current '%s': %w", currentStr, err)
	}
	return &snapshot, nil
}

// GetBalanceHistory returns the user's snapshots, newest first
func (s *SubledgerService) GetBalanceHistory(ctx context.Context, userId string, limit, offset int) ([]models.BalanceSnapshot, error) {
	zap.L().Debug("Getting balance history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetBalanceHistory, userId, limit, offset)
	if err != nil {
		zap.L().Error("Failed to query balance history", zap.String("user_id", userId), zap.Error(err))
		return nil, storageErr("failed to query balance history", err)
	}
	defer closeRows(rows)

	var snapshots []models.BalanceSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, storageErr("failed to scan balance snapshot", err)
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during balance row iteration", zap.Error(err))
		return nil, storageErr("error iterating balance rows", err)
	}

	zap.L().Debug("Retrieved balance history", zap.String("user_id", userId), zap.Int("count", len(snapshots)))
	return snapshots, nil
}
