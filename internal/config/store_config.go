package config

type StoreConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Store struct{}

var _ StoreConfig = Store{}

// GetDatabaseURL returns the postgres connection string. Empty selects the in-memory store.
func (Store) GetDatabaseURL() string {
	return GetEnv("DATABASE_URL", "")
}

func (Store) GetDatabaseMaxConns() int {
	return GetInt("DATABASE_MAX_CONNS", 10)
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "127.0.0.1:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetInt("REDIS_DB", 0)
}

func (Store) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "tauth:")
}
