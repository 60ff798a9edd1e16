package application

import (
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

// Nomes usados como tópicos nos barramentos.
const (
	ExecuteCommandName  = "ExecuteCommand"
	SaveMessageName     = "SaveMessage"
	FindMessageName     = "FindMessage"
	CommandExecutedName = "CommandExecuted"
)

// ExecuteCommandData carrega um pedido de execução vindo do host.
type ExecuteCommandData struct {
	RequestID string `json:"request_id"`
	Command   string `json:"command"`
	EntityID  uint32 `json:"entity_id"`
}

func NewExecuteCommand(data ExecuteCommandData) domain.Command[ExecuteCommandData] {
	return domain.NewCommand(ExecuteCommandName, data)
}

type SaveMessageData struct {
	ID    uint32 `json:"id"`
	Value string `json:"value"`
}

func NewSaveMessageCommand(data SaveMessageData) domain.Command[SaveMessageData] {
	return domain.NewCommand(SaveMessageName, data)
}
