package seeders

import (
	"context"
	"fmt"
	"log"

	"gmp-system/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

var usersData = []struct {
	Fio      string
	Email    string
	Login    string
	Password string
	Position string
}{
	{Fio: "Каримова Мадина Рустамовна", Email: "qa-head@pharm.local", Login: "qa_head", Password: "QaHead#2026", Position: "Руководитель отдела качества"},
	{Fio: "Назаров Фируз Шарифович", Email: "qc-analyst@pharm.local", Login: "qc_analyst", Password: "QcAnalyst#2026", Position: "Аналитик лаборатории КК"},
	{Fio: "Саидова Нигора Баховаддиновна", Email: "investigator@pharm.local", Login: "investigator", Password: "Investigator#2026", Position: "Следователь по расследованиям"},
	{Fio: "Рахимов Далер Мухтарович", Email: "production@pharm.local", Login: "production", Password: "Production#2026", Position: "Оператор производства"},
}

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание пользователей...")

	for _, u := range usersData {
		var existingID uint64
		err := db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", u.Email).Scan(&existingID)
		if err == nil {
			log.Printf("    - Пользователь %s уже существует. Пропускаем.", u.Login)
			continue
		}

		hash, err := utils.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("не удалось хешировать пароль для %s: %w", u.Login, err)
		}

		_, err = db.Exec(ctx, `
			INSERT INTO users (fio, email, login, password, position, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)`,
			u.Fio, u.Email, u.Login, hash, u.Position,
		)
		if err != nil {
			return fmt.Errorf("не удалось создать пользователя %s: %w", u.Login, err)
		}
		log.Printf("    - Создан пользователь %s (%s)", u.Login, u.Position)
	}
	return nil
}
