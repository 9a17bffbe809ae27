package focus

import (
	"testing"

	"bioforge/testutil"
)

func TestNoStorageImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.InfraImportForbidden, testutil.StorageDriverForbidden), "focus is a pure view over a plan")
}
