package main

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"listky/internal/auth"
	"listky/internal/config"
	"listky/internal/db"
	"listky/internal/model"
	"listky/internal/privacy"
	"listky/internal/repository"
)

// seedUser is a demo account with a known PIN for local development.
type seedUser struct {
	Username string
	Pin      string
	Lists    []seedList
}

type seedList struct {
	Slug       string
	Title      string
	Content    string
	Visibility model.Visibility
}

var seedUsers = []seedUser{
	{
		Username: "alice",
		Pin:      "123456",
		Lists: []seedList{
			{Slug: "groceries", Title: "Groceries", Content: "- milk\n- eggs\n- bread", Visibility: model.VisibilityPrivate},
			{Slug: "reading", Title: "Reading list", Content: "- The Pragmatic Programmer\n- Designing Data-Intensive Applications", Visibility: model.VisibilityPublic},
		},
	},
	{
		Username: "bob",
		Pin:      "654321",
		Lists: []seedList{
			{Slug: "camping-gear", Title: "Camping gear", Content: "- tent\n- stove\n- headlamp", Visibility: model.VisibilityPublic},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.Set("gorm:table_options", "COLLATE=utf8mb4_bin").AutoMigrate(&model.Account{}, &model.List{}, &model.ViewEvent{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	accountRepo := repository.NewAccountRepository(gormDB)
	listRepo := repository.NewListRepository(gormDB)
	hasher := privacy.NewIPHasher(cfg.IPSalt)
	ctx := context.Background()

	accounts, lists, err := seed(ctx, accountRepo, listRepo, hasher)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Accounts created: %d", accounts)
	log.Printf("  - Lists created: %d", lists)
	log.Printf("Demo PINs: alice=123456 bob=654321 (local development only)")
}

// seed inserts demo accounts and lists, skipping anything already present.
func seed(ctx context.Context, accountRepo repository.AccountRepository, listRepo repository.ListRepository, hasher *privacy.IPHasher) (accounts int, lists int, err error) {
	for _, u := range seedUsers {
		pinHash, err := auth.HashPIN(u.Pin)
		if err != nil {
			return accounts, lists, err
		}

		account := &model.Account{
			Username:      u.Username,
			PinHash:       pinHash,
			LastIPHash:    hasher.HashIP("127.0.0.1"),
			TrendingOptIn: true,
			CreatedAt:     time.Now(),
		}
		if err := accountRepo.Create(ctx, account); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return accounts, lists, err
			}
			log.Printf("Account %q already exists, skipping", u.Username)
		} else {
			accounts++
		}

		for _, l := range u.Lists {
			list := &model.List{
				OwnerUsername: u.Username,
				Slug:          l.Slug,
				Title:         l.Title,
				Content:       l.Content,
				Visibility:    l.Visibility,
			}
			if err := listRepo.Create(ctx, list); err != nil {
				if !errors.Is(err, gorm.ErrDuplicatedKey) {
					return accounts, lists, err
				}
				log.Printf("List %s/%s already exists, skipping", u.Username, l.Slug)
				continue
			}
			lists++
		}
	}
	return accounts, lists, nil
}
