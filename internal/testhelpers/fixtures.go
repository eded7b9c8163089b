package testhelpers

import (
	"os"
	"path/filepath"
	"runtime"

	g "github.com/onsi/gomega"
)

func LoadFixture(name string) ([]byte, error) {
	_, file, _, _ := runtime.Caller(0)
	return os.ReadFile(filepath.Join(filepath.Dir(file), "fixtures", name))
}

// Fixture is LoadFixture for specs: a missing file fails the running spec.
func Fixture(name string) string {
	data, err := LoadFixture(name)
	g.Expect(err).NotTo(g.HaveOccurred(), "fixture "+name)
	return string(data)
}
