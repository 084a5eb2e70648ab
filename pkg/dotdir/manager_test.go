package dotdir_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliolabs/folio/pkg/dotdir"
)

func TestDotdir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dotdir Suite")
}

var _ = Describe("Manager", func() {
	var m *dotdir.Manager

	BeforeEach(func() {
		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("uses the override directory when provided", func() {
			override := filepath.Join(GinkgoT().TempDir(), "custom")

			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("creates the override directory if missing", func() {
			override := filepath.Join(GinkgoT().TempDir(), "a", "b")

			target, err := m.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(BeADirectory())
		})
	})

	Describe("Subdir", func() {
		It("creates a named subdirectory under the target", func() {
			override := GinkgoT().TempDir()

			dir, err := m.Subdir(override, "uploads")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(override, "uploads")))
			Expect(dir).To(BeADirectory())
		})

		It("is idempotent", func() {
			override := GinkgoT().TempDir()

			first, err := m.Subdir(override, "indexes")
			Expect(err).NotTo(HaveOccurred())

			second, err := m.Subdir(override, "indexes")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})
})
