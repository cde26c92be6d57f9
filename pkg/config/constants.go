package config

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MARKETPOINT_DB_DSN"
	EnvDBHost = "MARKETPOINT_DB_HOST"
	EnvDBUser = "MARKETPOINT_DB_USER"
	EnvDBName = "MARKETPOINT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
