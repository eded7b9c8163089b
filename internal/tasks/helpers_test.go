package tasks_test

import (
	"lkcrawl/internal/pkg/linkedin"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func newTestClient() *linkedin.Client {
	client, err := linkedin.New(zap.NewNop(), 0)
	Expect(err).NotTo(HaveOccurred())
	client.UseDefaultClient()
	client.UseCookies("AQEDtest", "ajax:1")
	return client
}
