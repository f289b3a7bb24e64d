package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	email      string
	password   string
	name       string
	department string
	position   string
	role       string
}

var seedUsers = []seedUser{
	{"admin@baikal.ai", "admin1234", "관리자", "경영지원", "대표", "admin"},
	{"kim@baikal.ai", "user1234", "김철수", "개발팀", "팀장", "user"},
	{"lee@baikal.ai", "user1234", "이영희", "개발팀", "선임", "user"},
	{"park@baikal.ai", "user1234", "박지민", "마케팅팀", "팀장", "user"},
	{"choi@baikal.ai", "user1234", "최민수", "인사팀", "과장", "user"},
}

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	query := `
	INSERT INTO users (id, email, password, name, department, position, role, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, true, $8, $8)
	ON CONFLICT (email) DO UPDATE SET
	  password = EXCLUDED.password,
	  name = EXCLUDED.name,
	  department = EXCLUDED.department,
	  position = EXCLUDED.position,
	  role = EXCLUDED.role,
	  updated_at = EXCLUDED.updated_at
	RETURNING id
	`

	now := time.Now()
	for _, u := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), 10)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		var id string
		err = db.QueryRow(query, uuid.NewString(), u.email, string(hash), u.name, u.department, u.position, u.role, now).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		fmt.Printf("seeded user: email=%s role=%s id=%s\n", u.email, u.role, id)
	}
}
