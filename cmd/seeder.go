package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"applications", "internships", "profiles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		studentID := seedUser(db, "student@mail.com", "Demo Student", "student", string(hash))
		seedProfileFields(db, studentID, map[string]interface{}{
			"university": "Istanbul Technical University",
			"major":      "Computer Engineering",
			"skills":     "Kotlin, Java, SQL",
		})

		companies := []struct {
			email string
			name  string
		}{
			{"techcorp@mail.com", "TechCorp"},
			{"designco@mail.com", "DesignCo"},
			{"datatech@mail.com", "DataTech"},
			{"webstudio@mail.com", "WebStudio"},
			{"appletech@mail.com", "AppleTech"},
			{"cloudsys@mail.com", "CloudSys"},
		}
		companyIDs := make(map[string]string, len(companies))
		for _, c := range companies {
			companyIDs[c.name] = seedUser(db, c.email, c.name, "company", string(hash))
		}

		internships := []struct {
			title    string
			company  string
			location string
			duration string
			salary   string
		}{
			{"Android Developer Intern", "TechCorp", "Istanbul", "3 months", "5000 TL"},
			{"UI/UX Design Intern", "DesignCo", "Ankara", "2 months", "4000 TL"},
			{"Data Analyst Intern", "DataTech", "Izmir", "4 months", "4500 TL"},
			{"Web Developer Intern", "WebStudio", "Istanbul", "3 months", "5500 TL"},
			{"iOS Developer Intern", "AppleTech", "Bursa", "6 months", "6000 TL"},
			{"Backend Developer Intern", "CloudSys", "Istanbul", "4 months", "7000 TL"},
		}

		for _, in := range internships {
			var exists int
			row := db.Raw("SELECT 1 FROM internships WHERE title = ? AND company = ?", in.title, in.company).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			err := db.Exec(`INSERT INTO internships (id, title, company, company_id, location, duration, salary, description, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, true, now(), now())`,
				uuid.NewString(), in.title, in.company, companyIDs[in.company], in.location, in.duration, in.salary,
				fmt.Sprintf("%s is looking for a motivated %s in %s.", in.company, in.title, in.location)).Error
			if err != nil {
				log.Fatalf("failed to insert internship %s: %v", in.title, err)
			}
			fmt.Println("Seeded internship:", in.title, "at", in.company)
		}

		fmt.Println("Seeding complete. Demo password for all users:", password)
	},
}

func seedUser(db *gorm.DB, email, name, role, passwordHash string) string {
	var id string
	row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
	if err := row.Scan(&id); err == nil {
		fmt.Println("user already exists:", email)
		return id
	}

	id = uuid.NewString()
	if err := db.Exec("INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, now())",
		id, email, passwordHash).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	now := time.Now()
	if err := db.Exec("INSERT INTO profiles (user_id, email, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, email, name, role, now, now).Error; err != nil {
		log.Fatalf("failed to insert profile for %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email, "role:", role)
	return id
}

func seedProfileFields(db *gorm.DB, userID string, fields map[string]interface{}) {
	if len(fields) == 0 {
		return
	}
	if err := db.Table("profiles").Where("user_id = ?", userID).Updates(fields).Error; err != nil {
		log.Fatalf("failed to update profile fields for %s: %v", userID, err)
	}
}
