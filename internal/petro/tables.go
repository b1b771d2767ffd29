package petro

import (
	"maps"
	"slices"
	"strings"

	"github.com/tankgauge/nsvmc/internal/errdefs"
)

// Coefficients are the density-correlation constants of a product.
type Coefficients struct {
	K0 float64 `yaml:"k0" toml:"k0"`
	K1 float64 `yaml:"k1" toml:"k1"`
	K2 float64 `yaml:"k2" toml:"k2"`
}

// Material keys accepted by LookupMaterial.
const (
	CarbonSteel  = "acero al carbon"
	Stainless304 = "inox 304"
	Stainless316 = "inox 316"
	Monel        = "monel"
)

// CrudeOil is the built-in product key.
const CrudeOil = "crude oil"

// materialAlpha maps a tank shell material to its linear thermal expansion
// coefficient in 1/°F.
var materialAlpha = map[string]float64{
	CarbonSteel:  0.00000620,
	Stainless304: 0.00000961,
	Stainless316: 0.00000899,
	Monel:        0.00000720,
}

// builtinProducts are the K-coefficients shipped with the binary.
var builtinProducts = map[string]Coefficients{
	CrudeOil: {K0: 341.0957, K1: 0, K2: 0},
}

// LookupMaterial returns the thermal expansion coefficient for material.
func LookupMaterial(material string) (float64, error) {
	alpha, ok := materialAlpha[normalizeKey(material)]
	if !ok {
		return 0, errdefs.NotFound("material", material)
	}
	return alpha, nil
}

// Materials returns the known material keys in sorted order.
func Materials() []string {
	return slices.Sorted(maps.Keys(materialAlpha))
}

// Products is a product coefficient table. The zero value is empty; use
// NewProducts to start from the built-in entries.
type Products map[string]Coefficients

// NewProducts returns the built-in products plus extra, with extra entries
// overriding built-in ones of the same key.
func NewProducts(extra map[string]Coefficients) Products {
	p := make(Products, len(builtinProducts)+len(extra))
	for k, v := range builtinProducts {
		p[k] = v
	}
	for k, v := range extra {
		p[normalizeKey(k)] = v
	}
	return p
}

// Lookup returns the coefficients for product.
func (p Products) Lookup(product string) (Coefficients, error) {
	k, ok := p[normalizeKey(product)]
	if !ok {
		return Coefficients{}, errdefs.NotFound("product", product)
	}
	return k, nil
}

// Keys returns the product keys in sorted order.
func (p Products) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}

// LookupProduct looks product up in the built-in table.
func LookupProduct(product string) (Coefficients, error) {
	return NewProducts(nil).Lookup(product)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
