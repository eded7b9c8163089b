package stocks_test

import (
	"os"
	"path/filepath"

	"lkcrawl/internal/stocks"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Stock source", func() {
	const listing = `{"data": {"table": {"rows": [
		{"symbol": "AAPL", "name": "Apple Inc. Common Stock", "lastsale": "$170.00"},
		{"symbol": "ABEV", "name": "Ambev S.A. American Depositary Shares (Each representing 1 Common Share)"},
		{"symbol": "ACN", "name": "Accenture plc Class A Ordinary Shares (Ireland)"}
	]}}}`

	Describe("Parse", func() {
		It("keeps the file order", func() {
			list, err := stocks.Parse([]byte(listing))
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(Equal([]stocks.Stock{
				{Symbol: "AAPL", Name: "Apple Inc. Common Stock"},
				{Symbol: "ABEV", Name: "Ambev S.A. American Depositary Shares (Each representing 1 Common Share)"},
				{Symbol: "ACN", Name: "Accenture plc Class A Ordinary Shares (Ireland)"},
			}))
		})

		It("fails when a row has no name", func() {
			_, err := stocks.Parse([]byte(`{"data": {"table": {"rows": [{"symbol": "AAPL"}]}}}`))
			Expect(err).To(MatchError(stocks.ErrMalformedFile))
		})

		It("fails when the rows are missing", func() {
			_, err := stocks.Parse([]byte(`{"data": {}}`))
			Expect(err).To(MatchError(stocks.ErrMalformedFile))
		})

		It("fails on invalid json", func() {
			_, err := stocks.Parse([]byte(`{"data":`))
			Expect(err).To(MatchError(stocks.ErrMalformedFile))
		})
	})

	Describe("LoadFile", func() {
		It("reads the listing from disk", func() {
			path := filepath.Join(GinkgoT().TempDir(), "stocks.json")
			Expect(os.WriteFile(path, []byte(listing), 0o644)).To(Succeed())

			list, err := stocks.LoadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(3))
			Expect(list[1].Symbol).To(Equal("ABEV"))
		})

		It("reports a missing file", func() {
			_, err := stocks.LoadFile(filepath.Join(GinkgoT().TempDir(), "nope.json"))
			Expect(err).To(MatchError(os.ErrNotExist))
		})
	})

	Describe("Window", func() {
		list := []stocks.Stock{{Symbol: "A"}, {Symbol: "B"}, {Symbol: "C"}, {Symbol: "D"}}

		DescribeTable("selects a sub-range",
			func(offset, limit int, expected []string) {
				var symbols []string
				for _, s := range stocks.Window(list, offset, limit) {
					symbols = append(symbols, s.Symbol)
				}
				Expect(symbols).To(Equal(expected))
			},
			Entry("everything", 0, 0, []string{"A", "B", "C", "D"}),
			Entry("middle", 1, 2, []string{"B", "C"}),
			Entry("limit past the end", 2, 10, []string{"C", "D"}),
			Entry("offset past the end", 10, 2, nil),
			Entry("negative offset", -3, 1, []string{"A"}),
		)
	})
})
