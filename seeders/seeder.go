package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCore наполняет базовые данные: пользователей лаборатории и QA,
// производственные серии. Все сидеры идемпотентны.
func SeedCore(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых данных...")

	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения пользователей: %v", err)
	}
	if err := seedBatches(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения серий: %v", err)
	}

	log.Println("✅ Наполнение базовых данных завершено!")
}
