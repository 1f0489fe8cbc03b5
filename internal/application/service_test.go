package application_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/erensaridag/careermatch/internal/application"
	"github.com/erensaridag/careermatch/internal/core/events"
	"github.com/erensaridag/careermatch/internal/posting"
	"github.com/erensaridag/careermatch/internal/user"
)

func TestApplicationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ApplicationService Suite")
}

// Mock application repository for testing. companyByInternship stands in for
// the join the real repository does against the internships table.
type mockApplicationRepository struct {
	applications        map[string]*application.Application
	companyByInternship map[string]string
	nextID              int
	createError         error
}

func newMockApplicationRepository() *mockApplicationRepository {
	return &mockApplicationRepository{
		applications:        make(map[string]*application.Application),
		companyByInternship: make(map[string]string),
		nextID:              1,
	}
}

func (m *mockApplicationRepository) Create(a *application.Application) error {
	if m.createError != nil {
		return m.createError
	}
	for _, existing := range m.applications {
		if existing.StudentID == a.StudentID && existing.InternshipID == a.InternshipID {
			return application.ErrAlreadyApplied
		}
	}
	a.ID = fmt.Sprintf("application-%d", m.nextID)
	m.nextID++
	m.applications[a.ID] = a
	return nil
}

func (m *mockApplicationRepository) GetByID(id string) (*application.Application, error) {
	a, exists := m.applications[id]
	if !exists {
		return nil, application.ErrApplicationNotFound
	}
	return a, nil
}

func (m *mockApplicationRepository) ExistsForStudent(studentID, internshipID string) (bool, error) {
	for _, a := range m.applications {
		if a.StudentID == studentID && a.InternshipID == internshipID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepository) sorted(filter func(*application.Application) bool) []application.Application {
	out := make([]application.Application, 0, len(m.applications))
	for _, a := range m.applications {
		if filter(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out
}

func (m *mockApplicationRepository) ListByStudent(studentID string) ([]application.Application, error) {
	return m.sorted(func(a *application.Application) bool { return a.StudentID == studentID }), nil
}

func (m *mockApplicationRepository) ListByPosting(internshipID string) ([]application.Application, error) {
	return m.sorted(func(a *application.Application) bool { return a.InternshipID == internshipID }), nil
}

func (m *mockApplicationRepository) UpdateStatus(id, status string) error {
	a, exists := m.applications[id]
	if !exists {
		return application.ErrApplicationNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (m *mockApplicationRepository) Delete(id string) error {
	if _, exists := m.applications[id]; !exists {
		return application.ErrApplicationNotFound
	}
	delete(m.applications, id)
	return nil
}

func (m *mockApplicationRepository) CountByStudent(studentID string) (int64, error) {
	var count int64
	for _, a := range m.applications {
		if a.StudentID == studentID {
			count++
		}
	}
	return count, nil
}

func (m *mockApplicationRepository) CountPendingForCompany(companyID string) (int64, error) {
	var count int64
	for _, a := range m.applications {
		if a.Status == application.StatusPending && m.companyByInternship[a.InternshipID] == companyID {
			count++
		}
	}
	return count, nil
}

// Mock posting store for testing
type mockPostingStore struct {
	postings map[string]*posting.Posting
}

func newMockPostingStore() *mockPostingStore {
	return &mockPostingStore{postings: make(map[string]*posting.Posting)}
}

func (m *mockPostingStore) GetByID(id string) (*posting.Posting, error) {
	p, exists := m.postings[id]
	if !exists {
		return nil, posting.ErrPostingNotFound
	}
	return p, nil
}

// Mock profile store for testing
type mockProfileStore struct {
	profiles map[string]user.Profile
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[string]user.Profile)}
}

func (m *mockProfileStore) GetByUserIDs(userIDs []string) ([]user.Profile, error) {
	out := make([]user.Profile, 0, len(userIDs))
	seen := make(map[string]bool)
	for _, id := range userIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, exists := m.profiles[id]; exists {
			out = append(out, p)
		}
	}
	return out, nil
}

var _ = Describe("ApplicationService", func() {
	var (
		service  *application.Service
		repo     *mockApplicationRepository
		postings *mockPostingStore
		profiles *mockProfileStore
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newMockApplicationRepository()
		postings = newMockPostingStore()
		profiles = newMockProfileStore()

		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		eventBus := events.NewEventBus(logger)
		service = application.NewService(repo, postings, profiles, eventBus, logger)

		postings.postings["internship-1"] = &posting.Posting{
			ID:        "internship-1",
			Title:     "Android Developer Intern",
			Company:   "TechCorp",
			CompanyID: "company-1",
			Location:  "Istanbul",
			IsActive:  true,
		}
		repo.companyByInternship["internship-1"] = "company-1"

		profiles.profiles["student-1"] = user.Profile{
			UserID:     "student-1",
			Email:      "student@example.com",
			Name:       "Test Student",
			Role:       user.RoleStudent,
			University: "ITU",
			Major:      "CS",
			Skills:     "Kotlin, SQL",
		}
	})

	Describe("Apply", func() {
		It("creates a pending application with denormalized listing fields", func() {
			a, err := service.Apply(ctx, "student-1", "internship-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(application.StatusPending))
			Expect(a.InternshipTitle).To(Equal("Android Developer Intern"))
			Expect(a.CompanyName).To(Equal("TechCorp"))
			Expect(a.AppliedAt).NotTo(BeZero())
		})

		It("rejects a second application to the same listing", func() {
			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Apply(ctx, "student-1", "internship-1")
			Expect(err).To(MatchError(application.ErrAlreadyApplied))
		})

		It("maps a storage-level duplicate to the same error", func() {
			// Simulates the race where the existence check passes but the
			// unique constraint fires on insert.
			repo.createError = application.ErrAlreadyApplied

			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).To(MatchError(application.ErrAlreadyApplied))
		})

		It("rejects an application to an inactive listing", func() {
			postings.postings["internship-1"].IsActive = false

			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).To(MatchError(posting.ErrPostingNotFound))
		})

		It("rejects an application to an unknown listing", func() {
			_, err := service.Apply(ctx, "student-1", "ghost")
			Expect(err).To(MatchError(posting.ErrPostingNotFound))
		})

		It("keeps the denormalized fields after the listing is edited", func() {
			a, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			postings.postings["internship-1"].Title = "Renamed Role"

			apps, _, err := service.ListByStudent("student-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(apps[0].ID).To(Equal(a.ID))
			Expect(apps[0].InternshipTitle).To(Equal("Android Developer Intern"))
		})
	})

	Describe("ListByStudent", func() {
		It("returns applications newest first and skips malformed rows", func() {
			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			repo.applications["broken"] = &application.Application{
				ID:        "broken",
				StudentID: "student-1",
				Status:    "garbage",
				AppliedAt: time.Now(),
			}

			apps, skipped, err := service.ListByStudent("student-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(apps).To(HaveLen(1))
			Expect(skipped).To(Equal(1))
		})
	})

	Describe("SetStatus", func() {
		var applicationID string

		BeforeEach(func() {
			a, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			applicationID = a.ID
		})

		It("allows every transition between valid statuses", func() {
			statuses := []string{
				application.StatusPending,
				application.StatusAccepted,
				application.StatusRejected,
			}
			for _, from := range statuses {
				for _, to := range statuses {
					Expect(repo.UpdateStatus(applicationID, from)).To(Succeed())

					err := service.SetStatus(ctx, "company-1", applicationID, to)
					Expect(err).NotTo(HaveOccurred(), "transition %s -> %s", from, to)

					stored, err := repo.GetByID(applicationID)
					Expect(err).NotTo(HaveOccurred())
					Expect(stored.Status).To(Equal(to))
				}
			}
		})

		It("rejects an invalid status value", func() {
			err := service.SetStatus(ctx, "company-1", applicationID, "maybe")
			Expect(err).To(MatchError(application.ErrInvalidStatus))
		})

		It("refuses a company that does not own the listing", func() {
			err := service.SetStatus(ctx, "company-2", applicationID, application.StatusAccepted)
			Expect(err).To(MatchError(application.ErrUnauthorizedAccess))
		})

		It("returns not found for an unknown application", func() {
			err := service.SetStatus(ctx, "company-1", "ghost", application.StatusAccepted)
			Expect(err).To(MatchError(application.ErrApplicationNotFound))
		})
	})

	Describe("Remove", func() {
		var applicationID string

		BeforeEach(func() {
			a, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			applicationID = a.ID
		})

		It("lets the applying student withdraw", func() {
			Expect(service.Remove("student-1", applicationID)).To(Succeed())
			_, err := repo.GetByID(applicationID)
			Expect(err).To(MatchError(application.ErrApplicationNotFound))
		})

		It("lets the owning company remove", func() {
			Expect(service.Remove("company-1", applicationID)).To(Succeed())
		})

		It("refuses anyone else", func() {
			err := service.Remove("student-2", applicationID)
			Expect(err).To(MatchError(application.ErrUnauthorizedAccess))
		})

		It("allows re-applying after a withdrawal", func() {
			Expect(service.Remove("student-1", applicationID)).To(Succeed())

			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("counts", func() {
		It("counts the student's applications", func() {
			postings.postings["internship-2"] = &posting.Posting{
				ID:        "internship-2",
				Title:     "Web Developer Intern",
				Company:   "WebStudio",
				CompanyID: "company-2",
				IsActive:  true,
			}
			repo.companyByInternship["internship-2"] = "company-2"

			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Apply(ctx, "student-1", "internship-2")
			Expect(err).NotTo(HaveOccurred())

			count, err := service.CountByStudent("student-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})

		It("counts only pending applications across the company's listings", func() {
			profiles.profiles["student-2"] = user.Profile{UserID: "student-2", Name: "Second"}

			a1, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Apply(ctx, "student-2", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			Expect(service.SetStatus(ctx, "company-1", a1.ID, application.StatusAccepted)).To(Succeed())

			count, err := service.CountPendingForCompany("company-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("ApplicantsWithDetails", func() {
		It("joins applications with student profiles", func() {
			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			details, skipped, err := service.ApplicantsWithDetails("company-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(skipped).To(BeZero())
			Expect(details).To(HaveLen(1))
			Expect(details[0].Name).To(Equal("Test Student"))
			Expect(details[0].University).To(Equal("ITU"))
			Expect(details[0].Status).To(Equal(application.StatusPending))
		})

		It("drops applications whose student profile is missing and counts them", func() {
			_, err := service.Apply(ctx, "student-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())

			repo.applications["no-profile"] = &application.Application{
				ID:           "no-profile",
				StudentID:    "ghost-student",
				InternshipID: "internship-1",
				Status:       application.StatusPending,
				AppliedAt:    time.Now(),
			}

			details, skipped, err := service.ApplicantsWithDetails("company-1", "internship-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(details).To(HaveLen(1))
			Expect(skipped).To(Equal(1))
		})

		It("refuses a company that does not own the listing", func() {
			_, _, err := service.ApplicantsWithDetails("company-2", "internship-1")
			Expect(err).To(MatchError(application.ErrUnauthorizedAccess))
		})
	})

	Describe("ApplicantDetails", func() {
		It("returns the profile for a known applicant", func() {
			p, err := service.ApplicantDetails("student-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("Test Student"))
		})

		It("returns not found for an unknown applicant", func() {
			_, err := service.ApplicantDetails("ghost")
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})
})
