package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"irma-verse/config"
	"irma-verse/internal/repository"
	"irma-verse/pkg/db"
	"irma-verse/pkg/password"
)

// 将早期以明文保存的密码转换为bcrypt哈希，已是哈希的跳过
func main() {
	dryRun := flag.Bool("dry-run", false, "only report accounts that would be migrated")
	flag.Parse()

	cfg := config.LoadConfig()
	gdb, err := db.InitDB(cfg.Database, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.CloseDB()

	ctx := context.Background()
	repo := repository.NewUserRepository(gdb)
	users, err := repo.ListAll(ctx)
	if err != nil {
		log.Fatalf("List users failed: %v", err)
	}

	migrated, skipped := 0, 0
	for _, u := range users {
		if password.IsHashed(u.PasswordHash) {
			skipped++
			continue
		}
		if *dryRun {
			fmt.Printf("would migrate %s\n", u.Email)
			migrated++
			continue
		}
		hash, err := password.Hash(u.PasswordHash)
		if err != nil {
			fmt.Printf("skip %s: %v\n", u.Email, err)
			skipped++
			continue
		}
		if err := repo.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			log.Fatalf("Update %s failed: %v", u.Email, err)
		}
		migrated++
	}

	fmt.Printf("Migrated: %d Skipped: %d\n", migrated, skipped)
}
