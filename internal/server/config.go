package server

type Config struct {
	ListenAddr string
	DBPath     string

	// Remote backup target. Push stays disabled when MongoURI is empty.
	MongoURI        string
	MongoDB         string
	MongoCollection string
	VaultID         string
}

func (c *Config) setDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:8440"
	}
	if c.DBPath == "" {
		c.DBPath = "./vault.db"
	}
	if c.MongoDB == "" {
		c.MongoDB = "taskvault"
	}
	if c.MongoCollection == "" {
		c.MongoCollection = "backups"
	}
	if c.VaultID == "" {
		c.VaultID = "primary"
	}
}
