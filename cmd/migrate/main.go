package main

import (
	"log"

	"voicechat_backend/internal/feature/users/domain/entity"
	"voicechat_backend/internal/platform/db"
)

func main() {
	conn := db.OpenDB()

	if err := conn.AutoMigrate(&entity.User{}); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	log.Println("migrate ok")
}
