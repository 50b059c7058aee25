package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/langchou/voltgazer/internal/models"
)

var (
	// ErrArchiveDisabled 未配置数据库
	ErrArchiveDisabled = errors.New("export archive disabled")
	// ErrExportNotFound 归档不存在
	ErrExportNotFound = errors.New("archived export not found")
)

// ExportRepository 导出归档仓库
type ExportRepository struct {
	db *DB
}

// NewExportRepository 创建导出归档仓库，db 为 nil 时所有操作返回 ErrArchiveDisabled
func NewExportRepository(db *DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Enabled 是否启用归档
func (r *ExportRepository) Enabled() bool {
	return r != nil && r.db != nil
}

// Create 归档一次导出，payload 为下载给用户的原始字节
func (r *ExportRepository) Create(ctx context.Context, artifact *models.ExportArtifact, payload []byte) (*models.ArchivedExport, error) {
	if !r.Enabled() {
		return nil, ErrArchiveDisabled
	}
	if !json.Valid(payload) {
		return nil, errors.New("export payload is not valid JSON")
	}

	rec := &models.ArchivedExport{
		VehicleID:   artifact.Document.VehicleID,
		Filename:    artifact.Filename,
		SampleCount: len(artifact.Document.Telemetry),
		ExportedAt:  artifact.ExportedAt,
		Payload:     payload,
	}

	query := `
		INSERT INTO telemetry_exports (vehicle_id, filename, sample_count, payload, exported_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.Pool.QueryRow(ctx, query,
		rec.VehicleID,
		rec.Filename,
		rec.SampleCount,
		rec.Payload,
		rec.ExportedAt,
	).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("insert telemetry export: %w", err)
	}
	return rec, nil
}

// ListByVehicle 分页列出某车辆的归档（不含 payload）
func (r *ExportRepository) ListByVehicle(ctx context.Context, vehicleID string, limit, offset int) ([]*models.ArchivedExport, error) {
	if !r.Enabled() {
		return nil, ErrArchiveDisabled
	}

	query := `
		SELECT id, vehicle_id, filename, sample_count, exported_at
		FROM telemetry_exports
		WHERE vehicle_id = $1
		ORDER BY exported_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Pool.Query(ctx, query, vehicleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query telemetry exports: %w", err)
	}
	defer rows.Close()

	var exports []*models.ArchivedExport
	for rows.Next() {
		e := &models.ArchivedExport{}
		if err := rows.Scan(&e.ID, &e.VehicleID, &e.Filename, &e.SampleCount, &e.ExportedAt); err != nil {
			return nil, fmt.Errorf("scan telemetry export: %w", err)
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate telemetry exports: %w", err)
	}
	return exports, nil
}

// CountByVehicle 统计归档数量
func (r *ExportRepository) CountByVehicle(ctx context.Context, vehicleID string) (int, error) {
	if !r.Enabled() {
		return 0, ErrArchiveDisabled
	}

	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM telemetry_exports WHERE vehicle_id = $1`, vehicleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count telemetry exports: %w", err)
	}
	return count, nil
}

// GetByID 获取归档（含 payload）
func (r *ExportRepository) GetByID(ctx context.Context, id int64) (*models.ArchivedExport, error) {
	if !r.Enabled() {
		return nil, ErrArchiveDisabled
	}

	query := `
		SELECT id, vehicle_id, filename, sample_count, payload, exported_at
		FROM telemetry_exports WHERE id = $1
	`
	e := &models.ArchivedExport{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.VehicleID,
		&e.Filename,
		&e.SampleCount,
		&e.Payload,
		&e.ExportedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get telemetry export: %w", err)
	}
	return e, nil
}
