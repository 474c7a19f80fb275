package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/asset-tracker/internal/models"
)

const assetColumns = `id, name, serial_number, responsible, assignment_date, condition, notes, user_uid`

func scanAsset(row interface{ Scan(dest ...any) error }) (*models.Asset, error) {
	a := &models.Asset{}
	var responsible, condition, notes sql.NullString
	if err := row.Scan(&a.ID, &a.Name, &a.SerialNumber, &responsible, &a.AssignmentDate,
		&condition, &notes, &a.UserUID); err != nil {
		return nil, err
	}
	if responsible.Valid {
		a.Responsible = &responsible.String
	}
	if condition.Valid {
		a.Condition = &condition.String
	}
	if notes.Valid {
		a.Notes = &notes.String
	}
	return a, nil
}

// CreateAsset вставляет новый актив и возвращает созданную запись целиком.
func (s *Storage) CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error) {
	const op = "storage.CreateAsset"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO assets (name, serial_number, responsible, condition, notes, user_uid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + assetColumns
	created, err := scanAsset(s.DB.QueryRowContext(ctx, query,
		asset.Name, asset.SerialNumber, asset.Responsible, asset.Condition, asset.Notes, asset.UserUID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// GetAsset возвращает актив по составному ключу (id, владелец).
// Чужой или несуществующий актив неотличимы: в обоих случаях ErrNotFound.
func (s *Storage) GetAsset(ctx context.Context, id int, userUID string) (*models.Asset, error) {
	const op = "storage.GetAsset"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + assetColumns + `
			  FROM assets
			  WHERE id = $1 AND user_uid = $2`
	a, err := scanAsset(s.DB.QueryRowContext(ctx, query, id, userUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// ListAssetsByOwner возвращает все активы пользователя, новые первыми.
func (s *Storage) ListAssetsByOwner(ctx context.Context, userUID string) ([]*models.Asset, error) {
	const op = "storage.ListAssetsByOwner"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + assetColumns + `
			  FROM assets
			  WHERE user_uid = $1
			  ORDER BY assignment_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	// Пустой список сериализуется как [], а не null.
	result := make([]*models.Asset, 0)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAsset обновляет данные актива по составному ключу (id, владелец)
// и возвращает количество изменённых строк.
func (s *Storage) UpdateAsset(ctx context.Context, asset models.Asset) (int, error) {
	const op = "storage.UpdateAsset"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE assets
			  SET name = $1, serial_number = $2, responsible = $3, condition = $4, notes = $5
			  WHERE id = $6 AND user_uid = $7`
	result, err := s.DB.ExecContext(ctx, query,
		asset.Name, asset.SerialNumber, asset.Responsible, asset.Condition, asset.Notes,
		asset.ID, asset.UserUID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveAsset удаляет актив по составному ключу (id, владелец)
// и возвращает количество удалённых строк.
func (s *Storage) RemoveAsset(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveAsset"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM assets WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// CountAssetsByOwner подсчитывает активы пользователя для freemium-лимита.
func (s *Storage) CountAssetsByOwner(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountAssetsByOwner"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM assets WHERE user_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
