package testhelpers_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"lkcrawl/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const host = "https://api.example.com"

var _ = Describe("MockTransport", func() {
	BeforeEach(func() {
		testhelpers.Activate()
	})

	AfterEach(func() {
		testhelpers.Deactivate()
	})

	get := func(target string, header http.Header) (*http.Response, error) {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		Expect(err).NotTo(HaveOccurred())
		for key := range header {
			req.Header.Set(key, header.Get(key))
		}
		return http.DefaultClient.Do(req)
	}

	It("answers a matching request once", func() {
		testhelpers.New(host).
			Get("/items?page=2").
			Reply(201).
			BodyString(`{"ok": true}`).
			Header("Content-Type", "application/json")
		Expect(testhelpers.IsDone()).To(BeFalse())

		res, err := get(host+"/items?page=2&sort=asc", nil)
		Expect(err).NotTo(HaveOccurred())
		defer res.Body.Close()

		Expect(res.StatusCode).To(Equal(201))
		Expect(res.Header.Get("Content-Type")).To(Equal("application/json"))
		body, err := io.ReadAll(res.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal(`{"ok": true}`))
		Expect(testhelpers.IsDone()).To(BeTrue())

		_, err = get(host+"/items?page=2", nil)
		Expect(err).To(MatchError(ContainSubstring("unexpected request")))
	})

	It("rejects a request with the wrong header value", func() {
		testhelpers.New(host).
			Get("/items").
			MatchHeader("accept", "application/json")

		_, err := get(host+"/items", http.Header{"Accept": {"text/html"}})
		Expect(err).To(MatchError(ContainSubstring(`header accept="text/html", want "application/json"`)))
		Expect(testhelpers.IsDone()).To(BeFalse())
		Expect(testhelpers.DefaultTransport.Pending()).To(ConsistOf("GET " + host + "/items"))

		res, err := get(host+"/items", http.Header{"Accept": {"application/json"}})
		Expect(err).NotTo(HaveOccurred())
		res.Body.Close()
		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(testhelpers.IsDone()).To(BeTrue())
	})

	It("rejects a query value that differs", func() {
		testhelpers.New(host).Get("/items?page=2")

		_, err := get(host+"/items?page=3", nil)
		Expect(err).To(MatchError(ContainSubstring("query page=[3], want [2]")))
	})

	It("matches form fields and leaves the body readable", func() {
		testhelpers.New(host).
			Post("/login").
			MatchForm("user", "jane").
			Reply(200)

		_, err := http.PostForm(host+"/login", url.Values{"user": {"joe"}})
		Expect(err).To(MatchError(ContainSubstring(`form user="joe", want "jane"`)))

		req, err := http.NewRequest(http.MethodPost, host+"/login", strings.NewReader("user=jane&pass=x"))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		res, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		res.Body.Close()
		Expect(testhelpers.IsDone()).To(BeTrue())

		sent, err := io.ReadAll(res.Request.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(sent)).To(Equal("user=jane&pass=x"))
	})

	It("serves expectations in registration order", func() {
		testhelpers.New(host).Get("/items").BodyString("first")
		testhelpers.New(host).Get("/items").BodyString("second")

		for _, want := range []string{"first", "second"} {
			res, err := get(host+"/items", nil)
			Expect(err).NotTo(HaveOccurred())
			body, err := io.ReadAll(res.Body)
			res.Body.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(want))
		}
	})

	It("forgets every expectation on Deactivate", func() {
		testhelpers.New(host).Get("/items")
		testhelpers.Deactivate()

		Expect(testhelpers.IsDone()).To(BeTrue())
		Expect(http.DefaultClient.Transport).NotTo(Equal(testhelpers.DefaultTransport))
		testhelpers.Activate()
	})
})
