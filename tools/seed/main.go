package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"irma-verse/config"
	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/pkg/apperr"
	"irma-verse/pkg/db"
	"irma-verse/pkg/password"

	"github.com/brianvoe/gofakeit/v6"
)

var instructors = []struct {
	Name, Subject, Expertise string
}{
	{"Ustadz Ahmad Zaki", "Fiqih & Bimbingan Ibadah", "Fiqih, Akhlak, Pembinaan Harian"},
	{"Ustadzah Fatimah", "Konsultasi Fiqih Wanita", "Fiqih wanita, adab keluarga, kajian tematik"},
	{"Ustadz Muhammad Rizki", "Tafsir & Tahfidz", "Tafsir, tahfidz, sanad bacaan"},
}

var classes = []string{"X IPA 1", "X IPS 2", "XI IPA 2", "XI IPS 1", "XII IPA 1", "XII IPS 3"}

func main() {
	members := flag.Int("members", 30, "number of fake members")
	pass := flag.String("password", "irmaverse", "password for every seeded account")
	seed := flag.Int64("seed", 0, "gofakeit seed (0 = random)")
	flag.Parse()

	if *seed != 0 {
		gofakeit.Seed(*seed)
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	gdb, err := db.InitDB(cfg.Database, cfg.Log.Level)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.CloseDB()
	if err := db.AutoMigrate(&model.User{}, &model.Friendship{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	hash, err := password.Hash(*pass)
	if err != nil {
		log.Fatalf("Hash password failed: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gdb)
	friendships := repository.NewFriendshipRepository(gdb)

	create := func(u *model.User) bool {
		u.PasswordHash = hash
		if err := users.Create(ctx, u); err != nil {
			if apperr.KindOf(err) == apperr.KindConflict {
				fmt.Printf("skip %s (exists)\n", u.Email)
				return false
			}
			log.Fatalf("Create user failed: %v", err)
		}
		return true
	}

	create(&model.User{Name: "Admin IRMA", Email: "admin@irma.test", Role: model.RoleAdmin})
	for i, in := range instructors {
		create(&model.User{
			Name:  in.Name,
			Email: fmt.Sprintf("instruktur%d@irma.test", i+1),
			Role:  model.RoleInstructor,
			Class: in.Subject,
			Bio:   in.Expertise,
		})
	}

	created := make([]*model.User, 0, *members)
	for i := 0; i < *members; i++ {
		first := gofakeit.FirstName()
		u := &model.User{
			Name:    first + " " + gofakeit.LastName(),
			Email:   fmt.Sprintf("%s.%s@irma.test", strings.ToLower(first), gofakeit.Numerify("####")),
			Role:    model.RoleUser,
			Class:   gofakeit.RandomString(classes),
			Phone:   "08" + gofakeit.Numerify("##########"),
			Address: gofakeit.City(),
			Bio:     gofakeit.Sentence(8),
		}
		if create(u) {
			created = append(created, u)
		}
	}

	// 随机建立一些好友关系：约三分之一已接受，其余待处理
	pairs := 0
	for i := 0; i+1 < len(created); i++ {
		a, b := created[i], created[gofakeit.Number(i+1, len(created)-1)]
		status := model.FriendshipPending
		if gofakeit.Number(0, 2) == 0 {
			status = model.FriendshipAccepted
		}
		err := friendships.Create(ctx, &model.Friendship{RequesterID: a.ID, AddresseeID: b.ID, Status: status})
		if err != nil && apperr.KindOf(err) != apperr.KindConflict {
			log.Fatalf("Create friendship failed: %v", err)
		}
		if err == nil {
			pairs++
		}
	}

	fmt.Printf("Seeded %d members, %d instructors, 1 admin, %d friendships\n", len(created), len(instructors), pairs)
}
