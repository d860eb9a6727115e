package config

const (
	DefaultProviderTimeoutMS = 120000

	DefaultPersistDebounceMS = 500

	DefaultContextTokenLimit = 24000
)
