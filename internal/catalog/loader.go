package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/osse101/FarmState_Go/internal/validation"
)

const schemaName = "catalog.schema.json"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

//go:embed catalog.schema.json
var catalogSchema []byte

// Sentinel errors for catalog loading
var (
	ErrInvalidConfig = errors.New("invalid catalog configuration")
	ErrDuplicateSeed = errors.New("duplicate fruit seed")
)

type catalogFile struct {
	Version     string     `yaml:"version"`
	Description string     `yaml:"description"`
	Fruits      []fruitDef `yaml:"fruits"`
	Bonuses     []bonusDef `yaml:"bonuses"`
}

type fruitDef struct {
	Seed            string  `yaml:"seed"`
	Yield           string  `yaml:"yield"`
	PlantSeconds    int     `yaml:"plant_seconds"`
	Price           float64 `yaml:"price"`
	MinHarvests     int     `yaml:"min_harvests"`
	MaxHarvests     int     `yaml:"max_harvests"`
	DefaultHarvests int     `yaml:"default_harvests"`
	Feature         string  `yaml:"feature"`
}

type bonusDef struct {
	Source     string   `yaml:"source"`
	SourceKind string   `yaml:"source_kind"`
	Effect     string   `yaml:"effect"`
	Subjects   []string `yaml:"subjects"`
	Category   string   `yaml:"category"`
	Multiplier *float64 `yaml:"multiplier"`
	Offset     float64  `yaml:"offset"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the catalog embedded in the binary
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Parse(defaultCatalogYAML)
	})
	return defaultCat, defaultErr
}

// MustDefault is Default for callers that cannot continue without a catalog
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalog YAML file from disk
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw YAML against the catalog schema and builds the lookup indexes
func Parse(raw []byte) (*Catalog, error) {
	if err := validate(raw); err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{
		Version:     file.Version,
		Description: file.Description,
		bySeed:      make(map[string]FruitSeed, len(file.Fruits)),
		byFruit:     make(map[string]FruitSeed, len(file.Fruits)),
	}

	for _, f := range file.Fruits {
		if _, dup := c.bySeed[f.Seed]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSeed, f.Seed)
		}
		def := f.DefaultHarvests
		if def == 0 {
			def = f.MinHarvests
		}
		if f.MinHarvests > f.MaxHarvests || def < f.MinHarvests || def > f.MaxHarvests {
			return nil, fmt.Errorf("%w: %s harvest bounds %d..%d with default %d",
				ErrInvalidConfig, f.Seed, f.MinHarvests, f.MaxHarvests, def)
		}
		seed := FruitSeed{
			Name:            f.Seed,
			Yield:           f.Yield,
			PlantSeconds:    f.PlantSeconds,
			Price:           decimal.NewFromFloat(f.Price),
			MinHarvests:     f.MinHarvests,
			MaxHarvests:     f.MaxHarvests,
			DefaultHarvests: def,
			Feature:         f.Feature,
		}
		c.seeds = append(c.seeds, seed)
		c.bySeed[seed.Name] = seed
		c.byFruit[seed.Yield] = seed
	}

	for _, b := range file.Bonuses {
		multiplier := decimal.NewFromInt(1)
		if b.Multiplier != nil {
			multiplier = decimal.NewFromFloat(*b.Multiplier)
		}
		c.bonuses = append(c.bonuses, Bonus{
			Source:     b.Source,
			SourceKind: SourceKind(b.SourceKind),
			Effect:     Effect(b.Effect),
			Subjects:   append([]string(nil), b.Subjects...),
			Category:   b.Category,
			Multiplier: multiplier,
			Offset:     decimal.NewFromFloat(b.Offset),
		})
	}

	return c, nil
}

// validate runs the YAML document through the JSON schema. The document is
// decoded generically and re-encoded as JSON so the schema validator can read it.
func validate(raw []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidConfig)
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	v := validation.NewSchemaValidator()
	if err := v.RegisterSchema(schemaName, catalogSchema); err != nil {
		return fmt.Errorf("failed to register catalog schema: %w", err)
	}
	if err := v.ValidateBytes(asJSON, schemaName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
