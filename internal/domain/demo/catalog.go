package demo

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownPreset is returned for a preset index outside the catalogue.
var ErrUnknownPreset = errors.New("unknown sample product")

// SampleProduct is one demo preset. Numeric fields are kept as the strings
// placed into the form.
type SampleProduct struct {
	Name     string `yaml:"name" json:"name"`
	Title    string `yaml:"title" json:"title"`
	Price    string `yaml:"price" json:"price"`
	Rating   string `yaml:"rating" json:"rating"`
	Reviews  string `yaml:"reviews" json:"reviews"`
	Category string `yaml:"category" json:"category"`
}

//go:embed catalog.yaml
var catalogYAML []byte

var loadCatalogue = sync.OnceValues(func() ([]SampleProduct, error) {
	var products []SampleProduct
	if err := yaml.Unmarshal(catalogYAML, &products); err != nil {
		return nil, fmt.Errorf("parsing sample catalogue: %w", err)
	}
	if len(products) == 0 {
		return nil, errors.New("sample catalogue is empty")
	}
	return products, nil
})

// Catalogue returns a copy of the fixed sample products in display order.
func Catalogue() []SampleProduct {
	products, err := loadCatalogue()
	if err != nil {
		panic(err)
	}
	out := make([]SampleProduct, len(products))
	copy(out, products)
	return out
}

// Preset returns the sample product at index i.
func Preset(i int) (SampleProduct, error) {
	products := Catalogue()
	if i < 0 || i >= len(products) {
		return SampleProduct{}, fmt.Errorf("%w: %d", ErrUnknownPreset, i)
	}
	return products[i], nil
}
