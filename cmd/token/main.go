// Command token prints a signed bearer token for local development.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bookshelf/internal/platform/crypto"

	"github.com/joho/godotenv"
)

func main() {
	var (
		userID = flag.String("user", "demo-user", "user id for the sub claim")
		ttl    = flag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	token, err := crypto.GenerateToken(os.Getenv("JWT_SECRET"), *userID, *ttl)
	if err != nil {
		log.Fatalf("cannot sign token: %v", err)
	}
	fmt.Println(token)
}
