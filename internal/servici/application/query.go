package application

import (
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

type FindMessageData struct {
	ID uint32 `json:"id"`
}

func NewFindMessageQuery(data FindMessageData) domain.Query[FindMessageData] {
	return domain.NewQuery(FindMessageName, data)
}
