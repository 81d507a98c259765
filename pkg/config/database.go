package config

import (
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/database"
)

func (d DatabaseConfig) ToDBConfig() database.Config {
	return database.Config{
		Host:            d.Host,
		Port:            d.Port,
		Name:            d.Name,
		User:            d.User,
		Password:        d.Password,
		MaxConnections:  d.MaxConnections,
		SSLMode:         d.SSLMode,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		PingTimeout:     d.PingTimeout,
		ConnectAttempts: d.ConnectAttempts,
		ConnectDelay:    d.ConnectDelay,
	}
}

func (d DatabaseConfig) DSN() string {
	return d.ToDBConfig().DSN()
}
