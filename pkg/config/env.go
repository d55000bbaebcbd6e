package config

// EnvPrefix is the envconfig prefix shared by every setting.
const EnvPrefix = "DAIRYDROP"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "DAIRYDROP_APP_ENV"
	EnvPort             = "DAIRYDROP_APP_PORT"
	EnvDBDSN            = "DAIRYDROP_DB_DSN"
	EnvDBHost           = "DAIRYDROP_DB_HOST"
	EnvDBUser           = "DAIRYDROP_DB_USER"
	EnvDBName           = "DAIRYDROP_DB_NAME"
	EnvRedisURL         = "DAIRYDROP_REDIS_URL"
	EnvJWTSecret        = "DAIRYDROP_JWT_SECRET"
	EnvJWTRefreshSecret = "DAIRYDROP_JWT_REFRESH_SECRET"
	EnvJWTIssuer        = "DAIRYDROP_JWT_ISSUER"
)

// legacyDBEnvVars are the discrete connection vars accepted when no DSN is set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
