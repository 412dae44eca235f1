// Package questionnaire expone el catalogo de items del test de personalidad.
package questionnaire

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"therapy-match/internal/domain"
)

//go:embed items.yaml
var embeddedItems []byte

// Item es una pregunta del cuestionario.
type Item struct {
	ID    string               `yaml:"id" json:"id"`
	Trait domain.TraitCategory `yaml:"trait" json:"category"`
	Keyed string               `yaml:"keyed" json:"keyed"`
	Text  string               `yaml:"text" json:"text"`
}

// Catalog es el conjunto validado de items, en orden de presentacion.
type Catalog struct {
	Items []Item `yaml:"items" json:"items"`

	byID map[string]Item
}

var ErrInvalidCatalog = errors.New("invalid questionnaire catalog")

// Load parsea el catalogo embebido.
func Load() (*Catalog, error) {
	return Parse(embeddedItems)
}

// Parse decodifica y valida un catalogo YAML.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate() error {
	c.byID = make(map[string]Item, len(c.Items))
	perTrait := make(map[domain.TraitCategory]int, 5)
	for _, item := range c.Items {
		if item.ID == "" {
			return fmt.Errorf("%w: item without id", ErrInvalidCatalog)
		}
		if _, dup := c.byID[item.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidCatalog, item.ID)
		}
		if !item.Trait.Valid() {
			return fmt.Errorf("%w: item %q has unknown trait %q", ErrInvalidCatalog, item.ID, item.Trait)
		}
		if item.Keyed != "+" && item.Keyed != "-" {
			return fmt.Errorf("%w: item %q keyed must be + or -", ErrInvalidCatalog, item.ID)
		}
		c.byID[item.ID] = item
		perTrait[item.Trait]++
	}
	for _, trait := range domain.AllTraitCategories() {
		if perTrait[trait] != domain.QuestionsPerTrait {
			return fmt.Errorf("%w: trait %s has %d items, want %d", ErrInvalidCatalog, trait, perTrait[trait], domain.QuestionsPerTrait)
		}
	}
	return nil
}

// ByTrait devuelve los items de un rasgo en el orden en que los lee la formula.
func (c *Catalog) ByTrait(trait domain.TraitCategory) []Item {
	var out []Item
	for _, item := range c.Items {
		if item.Trait == trait {
			out = append(out, item)
		}
	}
	return out
}

// Lookup busca un item por id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	item, ok := c.byID[id]
	return item, ok
}
