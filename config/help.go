package config

import (
	"flag"
	"fmt"
)

const HelpMessage = `
Usage: tracker [flags]

Flags:
  -help                 Show this help message
  -config-path string   Path to the config yaml file (default "config.yaml")

Configuration is read from the yaml file and overridden by environment
variables (HTTP_PORT, DATABASE_HOST, RABBITMQ_HOST, NATS_URL, ...).
`

func PrintHelp() {
	if HelpMessage != "" {
		fmt.Printf("%s", HelpMessage)
	} else {
		flag.Usage()
	}
}

// PrintConfig prints the loaded configuration without secrets.
func PrintConfig(cfg *Config) {
	fmt.Printf("http:      %s:%s\n", cfg.HTTP.Host, cfg.HTTP.Port)
	fmt.Printf("database:  %s:%s/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	fmt.Printf("rabbitmq:  %s:%s\n", cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	fmt.Printf("nats:      %s bucket=%s\n", cfg.Nats.URL, cfg.Nats.Bucket)
	fmt.Printf("badger:    %s\n", cfg.Badger.Dir)
	fmt.Printf("cache:     ttl=%s reprobe=%s\n", cfg.Cache.TTL, cfg.Cache.ReprobeInterval)
	fmt.Printf("log level: %s\n", cfg.LogLevel)
}
