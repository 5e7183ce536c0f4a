package common

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/store"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type ServiceConfig struct {
	Id    string `yaml:"id"`
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Asset string `yaml:"asset"`
}

type ServicesConfig struct {
	Services []ServiceConfig `yaml:"services"`
}

// LoadServiceCatalog reads the services file. Relative paths resolve against
// the working directory.
func LoadServiceCatalog(servicesFile string) ([]models.Service, error) {
	servicesPath := servicesFile
	if !filepath.IsAbs(servicesFile) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		servicesPath = filepath.Join(wd, servicesFile)
	}

	data, err := os.ReadFile(servicesPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", servicesFile, err)
	}
	return ParseServiceCatalog(data)
}

func ParseServiceCatalog(data []byte) ([]models.Service, error) {
	var config ServicesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse services: %w", err)
	}

	seen := make(map[string]bool)
	services := make([]models.Service, 0, len(config.Services))
	for i, sc := range config.Services {
		if sc.Id == "" {
			return nil, fmt.Errorf("service at index %d missing id", i)
		}
		if sc.Name == "" {
			return nil, fmt.Errorf("service %s missing name", sc.Id)
		}
		kind := models.ServiceKind(sc.Kind)
		if kind != models.ServiceKindWithdrawal && kind != models.ServiceKindTrade {
			return nil, fmt.Errorf("service %s has unknown kind %q", sc.Id, sc.Kind)
		}
		if seen[sc.Id] {
			return nil, fmt.Errorf("service %s listed twice", sc.Id)
		}
		seen[sc.Id] = true

		services = append(services, models.Service{
			Id:    sc.Id,
			Name:  sc.Name,
			Kind:  kind,
			Asset: sc.Asset,
		})
	}

	return services, nil
}

// SeedServices upserts every catalog entry.
func SeedServices(ctx context.Context, st store.LedgerStore, services []models.Service) error {
	for _, service := range services {
		if err := st.UpsertService(ctx, service); err != nil {
			return fmt.Errorf("failed to seed service %s: %w", service.Id, err)
		}
		zap.L().Info("Seeded service",
			zap.String("id", service.Id),
			zap.String("name", service.Name),
			zap.String("kind", string(service.Kind)))
	}
	return nil
}
