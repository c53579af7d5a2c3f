package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
	"github.com/minhvu/portfolio-hub/pkg/auth"
)

// Seeds the durable local tier with demo projects when no document exists
// yet, and prints the bcrypt hash for ADMIN_PASSWORD so it can be pasted
// into the config.
func main() {
	fmt.Println("seeding demo portfolio data...")

	err := godotenv.Load()
	if err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	if password := os.Getenv("ADMIN_PASSWORD"); password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("cannot hash password: %v", err)
		}
		fmt.Printf("AUTH_ADMIN_PASSWORD_HASH=%s\n", hash)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	defer client.Close()

	ctx := context.Background()
	if _, err := client.Get(ctx, portfolio.DocumentKey).Result(); err == nil {
		fmt.Println("a portfolio document already exists, not touching it")
		return
	} else if err != redis.Nil {
		log.Fatalf("cannot connect Redis: %v", err)
	}

	now := time.Now().UnixMilli()
	doc := portfolio.DefaultDocument()
	doc.Projects = []portfolio.Entry{
		{
			"id":       now,
			"title":    "Finance",
			"category": "web development",
			"image":    "/assets/images/project-1.jpg",
			"url":      "#",
		},
		{
			"id":       now + 1,
			"title":    "Orizon",
			"category": "web development",
			"image":    "/assets/images/project-2.jpg",
			"url":      "#",
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		log.Fatalf("cannot serialize document: %v", err)
	}
	if err := client.Set(ctx, portfolio.DocumentKey, string(raw), 0).Err(); err != nil {
		log.Fatalf("cannot store document: %v", err)
	}

	fmt.Println("seeded demo portfolio successfully!")
}
