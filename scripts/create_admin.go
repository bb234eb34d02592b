package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Quick utility to generate a bcrypt hash for a new admin account
// Usage: go run scripts/create_admin.go <email> <password>
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run scripts/create_admin.go <email> <password>")
		fmt.Println("Example: go run scripts/create_admin.go staff@cohortly.dev 0i2rinbcp12yc31h")
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]

	// Generate bcrypt hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Email: %s\n", email)
	fmt.Printf("Bcrypt Hash: %s\n", string(hashedPassword))
	fmt.Printf("\nTo bootstrap the admin in MongoDB, run:\n")
	fmt.Printf("db.admins.insertOne({\n")
	fmt.Printf("  email: \"%s\",\n", email)
	fmt.Printf("  password: \"%s\",\n", string(hashedPassword))
	fmt.Printf("  roles: [\"admin\"],\n")
	fmt.Printf("  active: true,\n")
	fmt.Printf("  createdAt: new Date(),\n")
	fmt.Printf("  updatedAt: new Date()\n")
	fmt.Printf("})\n")
}
