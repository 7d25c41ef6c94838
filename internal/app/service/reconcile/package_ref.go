package reconcile

import "github.com/fatflowers/ispbill/internal/models"

// PackageRef is the outcome of looking up a subscriber's package: either
// Resolved or Dangling. A dangling reference is a valid steady state.
type PackageRef interface {
	isPackageRef()
}

type Resolved struct {
	Package models.Package
}

type Dangling struct {
	PackageID string
}

func (Resolved) isPackageRef() {}
func (Dangling) isPackageRef() {}

// Catalog indexes packages by id.
type Catalog map[string]models.Package

func NewCatalog(pkgs []models.Package) Catalog {
	c := make(Catalog, len(pkgs))
	for _, p := range pkgs {
		c[p.ID] = p
	}
	return c
}

func (c Catalog) Resolve(packageID string) PackageRef {
	if p, ok := c[packageID]; ok && packageID != "" {
		return Resolved{Package: p}
	}
	return Dangling{PackageID: packageID}
}
