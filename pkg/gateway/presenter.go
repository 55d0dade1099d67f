package gateway

import (
	"time"
	_ "time/tzdata"

	"github.com/morfien101/fila/pkg/fila"
)

const (
	DefaultTimezone = "America/Sao_Paulo"
	timeLayout      = "2006-01-02 15:04:05"
)

type pendingView struct {
	Nome            string `json:"nome"`
	TipoAtendimento string `json:"tipo_atendimento"`
	Posicao         int    `json:"posicao"`
	DataChegada     string `json:"data_chegada"`
	Atendido        bool   `json:"atendido"`
}

type servedView struct {
	Nome            string `json:"nome"`
	TipoAtendimento string `json:"tipo_atendimento"`
	Posicao         int    `json:"posicao"`
	DataChegada     string `json:"data_chegada"`
	DataAtendimento string `json:"data_atendimento"`
}

type serveView struct {
	Status          string `json:"status"`
	Nome            string `json:"nome"`
	DataAtendimento string `json:"data_atendimento"`
}

const (
	statusServed    = "Cliente atendido"
	statusEmpty     = "Sem clientes para atender"
	statusAllServed = "Todos os clientes foram atendidos"
)

func (s *Server) formatTime(t time.Time) string {
	return t.In(s.loc).Format(timeLayout)
}

func (s *Server) pending(e fila.Entry) pendingView {
	return pendingView{
		Nome:            e.Name,
		TipoAtendimento: string(e.ServiceClass),
		Posicao:         e.Position,
		DataChegada:     s.formatTime(e.ArrivalTime),
		Atendido:        e.Served,
	}
}

func (s *Server) served(r fila.ServedRecord) servedView {
	return servedView{
		Nome:            r.Name,
		TipoAtendimento: string(r.ServiceClass),
		Posicao:         r.Position,
		DataChegada:     s.formatTime(r.ArrivalTime),
		DataAtendimento: s.formatTime(r.ServiceTime),
	}
}

func (s *Server) serveResult(r fila.ServedRecord, outcome fila.Outcome) serveView {
	switch outcome {
	case fila.Served:
		return serveView{Status: statusServed, Nome: r.Name, DataAtendimento: s.formatTime(r.ServiceTime)}
	case fila.AllServed:
		return serveView{Status: statusAllServed}
	default:
		return serveView{Status: statusEmpty}
	}
}
