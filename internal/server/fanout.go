package server

import (
	"github.com/dushyant25398/Persistent-Systems/internal/handler"
	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

// fanout hands each record to every consumer in order.
type fanout []handler.RecordBuffer

func (f fanout) Insert(rec model.RequestRecord) {
	for _, b := range f {
		b.Insert(rec)
	}
}
