package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var batchesData = []struct {
	BatchNumber string
	ProductName string
}{
	{BatchNumber: "PARA-500-2026-001", ProductName: "Парацетамол 500 мг, таблетки"},
	{BatchNumber: "PARA-500-2026-002", ProductName: "Парацетамол 500 мг, таблетки"},
	{BatchNumber: "IBU-200-2026-014", ProductName: "Ибупрофен 200 мг, капсулы"},
	{BatchNumber: "AMOX-250-2026-007", ProductName: "Амоксициллин 250 мг, суспензия"},
}

func seedBatches(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание производственных серий...")

	for _, b := range batchesData {
		_, err := db.Exec(ctx, `
			INSERT INTO batches (batch_number, product_name, manufactured_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (batch_number) DO NOTHING`,
			b.BatchNumber, b.ProductName,
		)
		if err != nil {
			return fmt.Errorf("не удалось создать серию %s: %w", b.BatchNumber, err)
		}
	}
	log.Printf("    - Серии готовы (%d позиций)", len(batchesData))
	return nil
}
