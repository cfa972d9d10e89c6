package services

import (
	"context"
	"fmt"

	"gmp-system/internal/dto"
	"gmp-system/internal/repositories"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type AuditServiceInterface interface {
	List(ctx context.Context, filter repositories.AuditFilter) ([]dto.AuditEntryDTO, uint64, error)
	ExportXLSX(ctx context.Context, filter repositories.AuditFilter) (*excelize.File, error)
}

// AuditService - чтение общесистемного аудиторского следа и выгрузка в XLSX
// для регуляторных проверок. Записи только читаются.
type AuditService struct {
	auditRepo repositories.AuditRepositoryInterface
	logger    *zap.Logger
}

func NewAuditService(auditRepo repositories.AuditRepositoryInterface, logger *zap.Logger) AuditServiceInterface {
	return &AuditService{auditRepo: auditRepo, logger: logger}
}

func (s *AuditService) List(ctx context.Context, filter repositories.AuditFilter) ([]dto.AuditEntryDTO, uint64, error) {
	items, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.AuditEntryDTO, 0, len(items))
	for i := range items {
		result = append(result, auditItemToDTO(&items[i]))
	}
	return result, total, nil
}

var auditExportHeaders = []string{
	"ID", "Пользователь", "ФИО", "Действие", "Тип объекта", "ID объекта",
	"Было", "Стало", "Дата",
}

// ExportXLSX выгружает аудиторский след в книгу Excel. Пагинация фильтра
// игнорируется: отчёт для инспекции всегда полный в заданном диапазоне дат.
func (s *AuditService) ExportXLSX(ctx context.Context, filter repositories.AuditFilter) (*excelize.File, error) {
	filter.List.WithPagination = false
	items, _, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Audit Trail"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range auditExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, item := range items {
		values := []interface{}{
			item.ID,
			item.UserID,
			item.ActorFio.String,
			item.Action,
			item.EntityType,
			item.EntityID,
			strOrEmpty(item.OldValues),
			strOrEmpty(item.NewValues),
			item.CreatedAt.Local().Format(timeFormat),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	s.logger.Info("Сформирован XLSX-отчёт аудита", zap.Int("rows", len(items)))
	return f, nil
}

// ExportFilename возвращает имя файла выгрузки с диапазоном дат.
func ExportFilename(filter repositories.AuditFilter) string {
	name := "audit_trail"
	if filter.DateFrom != nil {
		name += "_" + filter.DateFrom.Format("2006-01-02")
	}
	if filter.DateTo != nil {
		name += "_" + filter.DateTo.Format("2006-01-02")
	}
	return fmt.Sprintf("%s.xlsx", name)
}
