package database

import "marketplace-api/pkg/utils"

func utilsConfig() utils.DatabaseConfig {
	return utils.DatabaseConfig{
		Host:     "db",
		Port:     "5433",
		Name:     "market",
		User:     "app",
		Password: "p@ss",
	}
}
