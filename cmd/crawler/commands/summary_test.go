package commands

import (
	"bytes"

	"lkcrawl/internal/tasks"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("output", func() {
	It("prints the session cookies between dashed lines", func() {
		var buf bytes.Buffer
		printCookies(&buf, "AQEDAR", "ajax:42")

		Expect(buf.String()).To(Equal(
			"-----------------------\n" +
				"li_at:      AQEDAR\n" +
				"jsessionip: ajax:42\n" +
				"-----------------------\n",
		))
	})

	It("renders the crawl report", func() {
		var buf bytes.Buffer
		renderReport(&buf, tasks.Report{Seen: 10, SkippedNoMatch: 2, Companies: 8, People: 120})

		out := buf.String()
		Expect(out).To(ContainSubstring("Crawl summary"))
		Expect(out).To(MatchRegexp(`Skipped: no match\s+│\s+2`))
		Expect(out).To(MatchRegexp(`People\s+│\s+120`))
	})
})

var _ = Describe("migrate down", func() {
	It("rejects a non-numeric step count", func() {
		err := migrateDownCmd.RunE(migrateDownCmd, []string{"many"})
		Expect(err).To(MatchError(ContainSubstring("positive integer")))
	})
})
