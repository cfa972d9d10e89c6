package main

import (
	"flag"
	"log"

	"gmp-system/pkg/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func main() {
	dir := flag.String("dir", "migrations", "каталог с файлами миграций")
	command := flag.String("command", "up", "команда goose: up, down, status, version")
	flag.Parse()

	cfg := config.New()

	db, err := goose.OpenDBWithDriver("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось открыть соединение с БД: %v", err)
	}
	defer db.Close()

	if err := goose.Run(*command, db, *dir); err != nil {
		log.Fatalf("миграция завершилась ошибкой (%s): %v", *command, err)
	}
	log.Printf("✅ Миграции: команда %q выполнена", *command)
}
