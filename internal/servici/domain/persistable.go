package domain

import "context"

// NotFound é o valor devolvido por Load quando não há nada gravado para o id.
// Ausência nunca é sinalizada como erro.
const NotFound = "NAN"

// Persistable é a única porta de acesso a armazenamento que o domínio conhece.
//
// Implementações devem ser seguras para uso concorrente, atômicas por chave em
// Save e garantir read-your-writes para um Save seguido de Load do mesmo chamador.
// Um erro de Save ou Load significa falha do meio e é sempre um *PersistenceError.
type Persistable interface {
	Save(ctx context.Context, id uint32, value string) error
	Load(ctx context.Context, id uint32) (string, error)
}
