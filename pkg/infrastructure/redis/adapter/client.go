package adapter

import (
	"github.com/redis/go-redis/v9"
)

// Options são os parâmetros de conexão usados pelo store e pelos streams.
type Options struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(opts Options) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}
