package main

import (
	"github.com/joho/godotenv"
	"github.com/s3dt-tech/catalog-backend/internal/app"
)

func main() {
	// .env опционален: в контейнере конфигурация приходит из окружения.
	_ = godotenv.Load()

	app.Run()
}
