package infrastructure

import (
	"github.com/google/uuid"

	"github.com/mateusmacedo/go-servici/pkg/domain"
)

func GenerateUUID() string {
	return uuid.New().String()
}

// UUIDGenerator adapta GenerateUUID à porta IDGenerator.
func UUIDGenerator() domain.IDGenerator[string] {
	return GenerateUUID
}
