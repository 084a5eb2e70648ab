package foliocmder

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFolioCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Folio Command Suite")
}

var _ = Describe("folio command", func() {
	It("registers the serve, index, and ask subcommands", func() {
		cmd := NewFolioCmd()

		names := make([]string, 0)
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}

		Expect(names).To(ContainElements("serve", "index", "ask"))
	})

	It("defines global debug and config flags", func() {
		cmd := NewFolioCmd()

		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config")).NotTo(BeNil())
	})
})
