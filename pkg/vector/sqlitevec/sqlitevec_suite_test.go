package sqlitevec_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSqliteVec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SqliteVec Suite")
}
