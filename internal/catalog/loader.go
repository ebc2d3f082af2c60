package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smallbiznis/rechargemock/internal/catalog/domain"
	"github.com/smallbiznis/rechargemock/internal/config"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Load reads the catalog once at startup. An explicit CATALOG_FILE must
// exist; otherwise catalog.yml is looked up in the search paths and the
// built-in catalog is used when none is found.
func Load(cfg config.Config, log *zap.Logger) (domain.Catalog, error) {
	v := viper.New()

	if path := strings.TrimSpace(cfg.CatalogFile); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/rechargemock")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
		}
		if log != nil {
			log.Info("catalog file not found, using built-in catalog")
		}
		return domain.DefaultCatalog(), nil
	}

	var c domain.Catalog
	if err := v.UnmarshalKey("catalog", &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	c = normalize(c)
	if err := Validate(c); err != nil {
		return domain.Catalog{}, err
	}

	if log != nil {
		log.Info("catalog loaded",
			zap.String("file", v.ConfigFileUsed()),
			zap.Int("operators", len(c.Operators)),
			zap.Int("providers", len(c.Providers)),
		)
	}
	return c, nil
}

func normalize(c domain.Catalog) domain.Catalog {
	for i := range c.Operators {
		c.Operators[i].Key = strings.ToLower(strings.TrimSpace(c.Operators[i].Key))
		c.Operators[i].Name = strings.TrimSpace(c.Operators[i].Name)
		c.Operators[i].Code = strings.TrimSpace(c.Operators[i].Code)
	}
	for i := range c.Providers {
		c.Providers[i].Code = strings.TrimSpace(c.Providers[i].Code)
		c.Providers[i].Name = strings.TrimSpace(c.Providers[i].Name)
	}
	return c
}

// Validate rejects catalogs the simulator cannot serve.
func Validate(c domain.Catalog) error {
	if len(c.Operators) == 0 {
		return domain.ErrEmptyOperators
	}
	if len(c.Providers) == 0 {
		return domain.ErrEmptyProviders
	}

	seenOperators := make(map[string]struct{}, len(c.Operators))
	for _, op := range c.Operators {
		if op.Key == "" || op.Name == "" || op.Code == "" || op.Commission < 0 {
			return fmt.Errorf("%w: %q", domain.ErrInvalidOperator, op.Key)
		}
		if _, dup := seenOperators[op.Key]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateOperator, op.Key)
		}
		seenOperators[op.Key] = struct{}{}
	}

	seenProviders := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Code == "" || p.Name == "" || p.FeePercentage < 0 {
			return fmt.Errorf("%w: %q", domain.ErrInvalidProvider, p.Code)
		}
		if p.MinAmount < 0 || p.MaxAmount < p.MinAmount {
			return fmt.Errorf("%w: %q", domain.ErrInvalidAmountRange, p.Code)
		}
		if _, dup := seenProviders[p.Code]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateProvider, p.Code)
		}
		seenProviders[p.Code] = struct{}{}
	}
	return nil
}
