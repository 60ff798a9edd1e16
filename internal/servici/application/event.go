package application

import (
	"github.com/mateusmacedo/go-servici/pkg/domain"
)

// Response é o resultado estruturado de uma execução.
type Response struct {
	ReqID    string `json:"req_id"`
	Msg      string `json:"msg"`
	DummyMsg string `json:"dummy_msg"`
}

// NewCommandExecutedEvent anuncia uma execução concluída.
func NewCommandExecutedEvent(response Response) domain.Event[Response] {
	return domain.NewEvent(CommandExecutedName, response)
}
