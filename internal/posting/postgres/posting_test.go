package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/erensaridag/careermatch/internal/posting"
)

func TestPostingRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PostingRepository Suite")
}

var _ = Describe("PostingRepository", func() {
	var (
		db   *gorm.DB
		repo *Repository
	)

	newPosting := func(title, companyID string, active bool, createdAt time.Time) *posting.Posting {
		return &posting.Posting{
			Title:     title,
			Company:   "TechCorp",
			CompanyID: companyID,
			Location:  "Istanbul",
			Duration:  "3 months",
			Salary:    "5000 TL",
			IsActive:  active,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&posting.Posting{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("assigns a uuid and persists the row", func() {
			p := newPosting("Android Developer Intern", "company-1", true, time.Now())

			err := repo.Create(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).NotTo(BeEmpty())

			found, err := repo.GetByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Title).To(Equal("Android Developer Intern"))
		})

		It("keeps a caller-provided id", func() {
			p := newPosting("Fixed ID", "company-1", true, time.Now())
			p.ID = "fixed-id"

			Expect(repo.Create(p)).To(Succeed())
			Expect(p.ID).To(Equal("fixed-id"))
		})
	})

	Describe("GetByID", func() {
		It("returns not found for a missing id", func() {
			_, err := repo.GetByID("ghost")
			Expect(err).To(MatchError(posting.ErrPostingNotFound))
		})
	})

	Describe("ListActive", func() {
		It("excludes inactive rows and orders newest first", func() {
			Expect(repo.Create(newPosting("Oldest", "company-1", true, time.Now().Add(-2*time.Hour)))).To(Succeed())
			Expect(repo.Create(newPosting("Hidden", "company-1", false, time.Now().Add(-time.Hour)))).To(Succeed())
			Expect(repo.Create(newPosting("Newest", "company-2", true, time.Now()))).To(Succeed())

			rows, err := repo.ListActive()
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Title).To(Equal("Newest"))
			Expect(rows[1].Title).To(Equal("Oldest"))
		})
	})

	Describe("ListByOwner", func() {
		It("includes inactive rows for the owner", func() {
			Expect(repo.Create(newPosting("Active", "company-1", true, time.Now().Add(-time.Hour)))).To(Succeed())
			Expect(repo.Create(newPosting("Paused", "company-1", false, time.Now()))).To(Succeed())
			Expect(repo.Create(newPosting("Other", "company-2", true, time.Now()))).To(Succeed())

			rows, err := repo.ListByOwner("company-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].Title).To(Equal("Paused"))
		})
	})

	Describe("UpdateFields", func() {
		It("applies a partial update and leaves other columns alone", func() {
			p := newPosting("Original", "company-1", true, time.Now())
			Expect(repo.Create(p)).To(Succeed())

			err := repo.UpdateFields(p.ID, map[string]interface{}{
				"title":     "Updated",
				"is_active": false,
			})
			Expect(err).NotTo(HaveOccurred())

			found, err := repo.GetByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Title).To(Equal("Updated"))
			Expect(found.IsActive).To(BeFalse())
			Expect(found.Location).To(Equal("Istanbul"))
			Expect(found.Salary).To(Equal("5000 TL"))
		})

		It("returns not found when no row matches", func() {
			err := repo.UpdateFields("ghost", map[string]interface{}{"title": "X"})
			Expect(err).To(MatchError(posting.ErrPostingNotFound))
		})
	})

	Describe("Delete", func() {
		It("removes the row", func() {
			p := newPosting("Doomed", "company-1", true, time.Now())
			Expect(repo.Create(p)).To(Succeed())

			Expect(repo.Delete(p.ID)).To(Succeed())
			_, err := repo.GetByID(p.ID)
			Expect(err).To(MatchError(posting.ErrPostingNotFound))
		})

		It("returns not found for a missing id", func() {
			Expect(repo.Delete("ghost")).To(MatchError(posting.ErrPostingNotFound))
		})
	})
})
