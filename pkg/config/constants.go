package config

// EnvPrefix is the envconfig namespace for all service configuration.
const EnvPrefix = "WATCHCREW"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "WATCHCREW_DB_DSN"
	EnvDBHost = "WATCHCREW_DB_HOST"
	EnvDBUser = "WATCHCREW_DB_USER"
	EnvDBName = "WATCHCREW_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
