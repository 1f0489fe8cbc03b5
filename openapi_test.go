package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("validates against the OpenAPI 3 schema", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents the marketplace surface", func() {
		for _, path := range []string{
			"/auth/signup",
			"/auth/login",
			"/auth/refresh",
			"/auth/reset-password",
			"/users/me",
			"/users/{id}",
			"/internships",
			"/internships/search",
			"/internships/{id}",
			"/internships/{id}/applications",
			"/internships/pending-count",
			"/applications/mine",
			"/applications/mine/count",
			"/applications/{id}/status",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("constrains application status to the three known values", func() {
		item := doc.Paths.Find("/applications/{id}/status")
		Expect(item).NotTo(BeNil())
		op := item.Patch
		Expect(op).NotTo(BeNil())

		body := op.RequestBody.Value.Content.Get("application/json")
		Expect(body).NotTo(BeNil())
		statusSchema := body.Schema.Value.Properties["status"]
		Expect(statusSchema).NotTo(BeNil())
		Expect(statusSchema.Value.Enum).To(ConsistOf("pending", "accepted", "rejected"))
	})
})
