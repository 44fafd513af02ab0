// seed applies the schema and inserts a few demo users with follow edges
// into the local dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/chirphq/chirp/internal/domain"
	"github.com/chirphq/chirp/internal/infrastructure/postgres"
	"golang.org/x/crypto/bcrypt"
)

const schemaFile = "migrations/001_init.sql"

type userSpec struct {
	username string
	fullName string
	email    string
	password string
}

var users = []userSpec{
	{"alice", "Alice Carter", "alice@chirp.local", "alice-pass"},
	{"bob", "Bob Mendez", "bob@chirp.local", "bob-pass-1"},
	{"carol", "Carol Nguyen", "carol@chirp.local", "carol-pass"},
}

// follower -> followee, by username
var follows = [][2]string{
	{"alice", "bob"},
	{"alice", "carol"},
	{"bob", "alice"},
	{"carol", "alice"},
	{"carol", "bob"},
}

func main() {
	ctx := context.Background()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(schemaFile)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}

	repo := postgres.NewUserRepository(pool)
	ids := make(map[string]string, len(users))

	for _, spec := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(spec.password), 10)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}

		created, err := repo.Create(ctx, &domain.User{
			Username:     spec.username,
			FullName:     spec.fullName,
			Email:        spec.email,
			PasswordHash: string(hash),
		})
		if err != nil {
			log.Printf("seed user %s: %v (skipping)", spec.username, err)
			continue
		}
		ids[spec.username] = created.ID
		fmt.Printf("created %s (%s) password=%s\n", spec.username, spec.email, spec.password)
	}

	for _, edge := range follows {
		follower, ok1 := ids[edge[0]]
		followee, ok2 := ids[edge[1]]
		if !ok1 || !ok2 {
			continue
		}
		_, err := pool.Exec(ctx,
			`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			follower, followee,
		)
		if err != nil {
			log.Printf("seed follow %s -> %s: %v", edge[0], edge[1], err)
		}
	}

	fmt.Println("seed complete")
}
