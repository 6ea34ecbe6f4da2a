package main

import (
	"database/sql"
	"fmt"
	"log"

	"irma-verse/config"
	"irma-verse/pkg/db"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.Database.Driver != "mysql" {
		log.Fatalf("reset_db only supports mysql, got %q", cfg.Database.Driver)
	}

	dsn, err := db.DSN(cfg.Database, "", 0)
	if err != nil {
		log.Fatalf("Build DSN failed: %v", err)
	}

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(); err != nil {
		log.Fatalf("Database connection test failed: %v", err)
	}

	fmt.Println("Database connected successfully")
	fmt.Printf("Database: %s\n", cfg.Database.Database)

	// Confirm
	fmt.Print("\nWARNING: This operation will CLEAR ALL DATA in tables [friendship, user]!\n")
	fmt.Print("Type 'YES' to confirm: ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "YES" {
		fmt.Println("Operation cancelled")
		return
	}

	// friendship 引用 user，先清子表
	tables := []string{"friendship", "user"}
	failed := false
	for _, table := range tables {
		fmt.Printf("Clearing table %s... ", table)
		res, err := conn.Exec(fmt.Sprintf("DELETE FROM `%s`", table))
		if err != nil {
			failed = true
			fmt.Printf("Failed: %v\n", err)
			continue
		}
		n, _ := res.RowsAffected()
		fmt.Printf("Success (%d rows)\n", n)
	}

	if failed {
		log.Fatal("Database reset finished with errors")
	}
	fmt.Println("\nDatabase reset completed!")
	fmt.Println("All table data cleared, table structure preserved")
}
