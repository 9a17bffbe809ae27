package domain

import (
	"testing"

	"bioforge/testutil"
)

func TestDomainStaysIndependent(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.AnyOf(testutil.InternalImportForbidden, testutil.StorageDriverForbidden), "domain model is shared by every layer")
	testutil.AssertNoTransitiveDependency(t, ".", testutil.InternalImportForbidden, "domain model must build without internal packages")
}
