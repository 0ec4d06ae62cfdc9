package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"placement/internal/message"
)

// MessageHandler exposes inbound messages: listing, creation, the state
// machine and the per-message action history.
type MessageHandler struct {
	Svc *message.Service
}

type messageDTO struct {
	ID        uint64    `json:"id"`
	SenderID  uint64    `json:"sender_id"`
	Date      time.Time `json:"date"`
	Subject   *string   `json:"subject"`
	Body      *string   `json:"body"`
	Channel   string    `json:"channel"`
	Priority  int       `json:"priority"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

func toMessageDTO(m *message.Message) messageDTO {
	return messageDTO{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Date:      m.Date,
		Subject:   m.Subject,
		Body:      m.Body,
		Channel:   string(m.Channel),
		Priority:  m.Priority,
		State:     string(m.State),
		CreatedAt: m.CreatedAt,
	}
}

type actionDTO struct {
	ID      uint64    `json:"id"`
	State   string    `json:"state"`
	Date    time.Time `json:"date"`
	Comment *string   `json:"comment"`
}

func (h *MessageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, message.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, message.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, message.ErrWrongState):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

var messageSortFields = map[string]string{
	"date":     "date",
	"priority": "priority",
	"state":    "state",
	"channel":  "channel",
	"subject":  "subject",
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := parseSort(r, messageSortFields, "date")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := message.Query{Page: page, Limit: limit, Sort: sort.Field, Desc: sort.Desc}
	if s := r.URL.Query().Get("filter"); s != "" {
		st, ok := message.ParseState(s)
		if !ok {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown state %q", s))
			return
		}
		q.State = &st
	}
	items, total, err := h.Svc.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dtos := make([]messageDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toMessageDTO(&items[i]))
	}
	writePage(w, dtos, page, limit, total)
}

func (h *MessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageDTO(m))
}

type createMessageReq struct {
	SenderID uint64    `json:"sender_id"`
	Channel  string    `json:"channel"`
	Subject  *string   `json:"subject"`
	Body     *string   `json:"body"`
	Date     time.Time `json:"date"`
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMessageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	ch, ok := message.ParseChannel(req.Channel)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown channel %q", req.Channel))
		return
	}
	m, err := h.Svc.Create(r.Context(), message.CreateInput{
		SenderID: req.SenderID,
		Channel:  ch,
		Subject:  req.Subject,
		Body:     req.Body,
		Date:     req.Date,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toMessageDTO(m))
}

type changeStateReq struct {
	NewState string  `json:"new_state"`
	Comment  *string `json:"comment"`
}

func (h *MessageHandler) ChangeState(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req changeStateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	st, ok := message.ParseState(req.NewState)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown state %q", req.NewState))
		return
	}
	m, err := h.Svc.ChangeState(r.Context(), id, st, req.Comment)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageDTO(m))
}

func (h *MessageHandler) ChangePriority(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Priority int `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	m, err := h.Svc.ChangePriority(r.Context(), id, req.Priority)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageDTO(m))
}

func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "messageID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	actions, err := h.Svc.History(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dtos := make([]actionDTO, 0, len(actions))
	for _, a := range actions {
		dtos = append(dtos, actionDTO{ID: a.ID, State: string(a.State), Date: a.Date, Comment: a.Comment})
	}
	writeJSON(w, http.StatusOK, dtos)
}
