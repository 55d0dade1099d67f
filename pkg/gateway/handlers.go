package gateway

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/morfien101/fila/pkg/fila"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	msgNameTooLong    = "O nome deve ter no máximo 20 caracteres"
	msgInvalidClass   = "Tipo de atendimento inválido. Use 'N' ou 'P'"
	msgNotFound       = "Cliente não encontrado"
	msgInvalidBody    = "Corpo da requisição inválido"
	msgInvalidPosicao = "A posição deve ser um número inteiro"
)

type enqueueRequest struct {
	Nome            *string `json:"nome"`
	TipoAtendimento *string `json:"tipo_atendimento"`
}

func detail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"detail": msg})
}

func (s *Server) health(c *gin.Context) {
	pending, served := s.desk.Stats()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pending": pending, "served": served})
}

func (s *Server) listPending(c *gin.Context) {
	entries := s.desk.ListPending()
	out := make([]pendingView, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.pending(e))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getEntry(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	e, err := s.desk.GetAt(pos)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.pending(e))
}

func (s *Server) enqueue(c *gin.Context) {
	var req enqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithField("error", err).Debug("Rejected enqueue body")
		detail(c, http.StatusUnprocessableEntity, msgInvalidBody)
		return
	}
	if req.Nome == nil || req.TipoAtendimento == nil {
		detail(c, http.StatusUnprocessableEntity, msgInvalidBody)
		return
	}

	e, err := s.desk.Enqueue(c.Request.Context(), *req.Nome, *req.TipoAtendimento)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.pending(e))
}

func (s *Server) serveNext(c *gin.Context) {
	rec, outcome := s.desk.ServeNext(c.Request.Context())
	c.JSON(http.StatusOK, s.serveResult(rec, outcome))
}

func (s *Server) removeEntry(c *gin.Context) {
	pos, ok := positionParam(c)
	if !ok {
		return
	}
	if _, err := s.desk.RemoveAt(c.Request.Context(), pos); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Cliente na posição %d removido", pos)})
}

func (s *Server) listServed(c *gin.Context) {
	records := s.desk.ListServed()
	out := make([]servedView, 0, len(records))
	for _, r := range records {
		out = append(out, s.served(r))
	}
	c.JSON(http.StatusOK, out)
}

func positionParam(c *gin.Context) (int, bool) {
	pos, err := strconv.Atoi(c.Param("posicao"))
	if err != nil {
		detail(c, http.StatusUnprocessableEntity, msgInvalidPosicao)
		return 0, false
	}
	return pos, true
}

// fail maps queue errors to the original status codes and messages.
func (s *Server) fail(c *gin.Context, err error) {
	var verr *fila.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := msgInvalidClass
		if verr.Field == fila.FieldName {
			msg = msgNameTooLong
		}
		detail(c, http.StatusBadRequest, msg)
	case errors.Is(err, fila.ErrNotFound):
		detail(c, http.StatusNotFound, msgNotFound)
	default:
		log.WithFields(log.Fields{"path": c.Request.URL.Path, "error": err}).Error("Unexpected queue error")
		detail(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}
