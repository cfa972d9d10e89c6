package main

import (
	"flag"
	"log"

	"gmp-system/pkg/config"
	"gmp-system/pkg/database/postgresql"
	"gmp-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)            ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Наполнить базовые данные (пользователи, серии)")
	flag.Parse()

	if !*runCore {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример: go run ./seeders/cmd/seed -core")
		return
	}

	cfg := config.New()
	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	seeders.SeedCore(db)
}
