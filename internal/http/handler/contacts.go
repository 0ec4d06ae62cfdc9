package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"placement/internal/contact"
)

// ContactHandler exposes the contact aggregate: CRUD plus the per-kind
// email/address/telephone sub-resources.
type ContactHandler struct {
	Svc *contact.Service
}

type emailDTO struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type addressDTO struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
}

type telephoneDTO struct {
	ID     uint64 `json:"id"`
	Prefix string `json:"prefix"`
	Number string `json:"number"`
}

type contactDTO struct {
	ID         uint64         `json:"id"`
	Name       string         `json:"name"`
	Surname    string         `json:"surname"`
	SSN        *string        `json:"ssn"`
	Category   string         `json:"category"`
	Emails     []emailDTO     `json:"emails"`
	Addresses  []addressDTO   `json:"addresses"`
	Telephones []telephoneDTO `json:"telephones"`
	CreatedAt  time.Time      `json:"created_at"`
}

func toContactDTO(c *contact.Contact) contactDTO {
	dto := contactDTO{
		ID:         c.ID,
		Name:       c.Name,
		Surname:    c.Surname,
		SSN:        c.SSN,
		Category:   string(c.Category),
		Emails:     []emailDTO{},
		Addresses:  []addressDTO{},
		Telephones: []telephoneDTO{},
		CreatedAt:  c.CreatedAt,
	}
	for _, e := range c.Emails {
		dto.Emails = append(dto.Emails, emailDTO{ID: e.ID, Email: e.Email})
	}
	for _, a := range c.Addresses {
		dto.Addresses = append(dto.Addresses, addressDTO{ID: a.ID, Address: a.Address})
	}
	for _, t := range c.Telephones {
		dto.Telephones = append(dto.Telephones, telephoneDTO{ID: t.ID, Prefix: t.Prefix, Number: t.Number})
	}
	return dto
}

func (h *ContactHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, contact.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, contact.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

var contactSortFields = map[string]string{
	"name":       "name",
	"surname":    "surname",
	"category":   "category",
	"created_at": "created_at",
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := parseSort(r, contactSortFields, "name")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	q := contact.Query{
		Page:      page,
		Limit:     limit,
		Sort:      sort.Field,
		Desc:      sort.Desc,
		Name:      r.URL.Query().Get("name"),
		Surname:   r.URL.Query().Get("surname"),
		Email:     r.URL.Query().Get("email"),
		Telephone: r.URL.Query().Get("telephone"),
	}
	items, total, err := h.Svc.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dtos := make([]contactDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toContactDTO(&items[i]))
	}
	writePage(w, dtos, page, limit, total)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

type createContactReq struct {
	Name       string   `json:"name"`
	Surname    string   `json:"surname"`
	SSN        *string  `json:"ssn"`
	Category   *string  `json:"category"`
	Emails     []string `json:"emails"`
	Addresses  []string `json:"addresses"`
	Telephones []string `json:"telephones"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createContactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	in := contact.CreateInput{
		Name:       req.Name,
		Surname:    req.Surname,
		SSN:        req.SSN,
		Category:   contact.CategoryUnknown,
		Emails:     req.Emails,
		Addresses:  req.Addresses,
		Telephones: req.Telephones,
	}
	if req.Category != nil {
		cat, ok := contact.ParseCategory(*req.Category)
		if !ok {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", *req.Category))
			return
		}
		in.Category = cat
	}
	c, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactDTO(c))
}

type updateContactReq struct {
	Name    *string `json:"name"`
	Surname *string `json:"surname"`
	SSN     *string `json:"ssn"`
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req updateContactReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.Update(r.Context(), id, contact.UpdateInput{
		Name:    req.Name,
		Surname: req.Surname,
		SSN:     req.SSN,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) ChangeCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Category string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	cat, ok := contact.ParseCategory(req.Category)
	if !ok {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("unknown category %q", req.Category))
		return
	}
	c, err := h.Svc.ChangeCategory(r.Context(), id, cat)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

// valueReq is the body for adding or replacing an email or address.
type valueReq struct {
	Value string `json:"value"`
}

func (h *ContactHandler) AddEmail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req valueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.AddEmail(r.Context(), id, req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	emailID, err := pathID(r, "emailID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req valueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.ChangeEmail(r.Context(), contactID, emailID, req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	emailID, err := pathID(r, "emailID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.Svc.DeleteEmail(r.Context(), contactID, emailID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req valueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.AddAddress(r.Context(), id, req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) ChangeAddress(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	addressID, err := pathID(r, "addressID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req valueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.ChangeAddress(r.Context(), contactID, addressID, req.Value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	addressID, err := pathID(r, "addressID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.Svc.DeleteAddress(r.Context(), contactID, addressID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

// telephoneReq accepts either a raw number (split server-side) or an explicit
// prefix/number pair.
type telephoneReq struct {
	Telephone string `json:"telephone"`
	Prefix    string `json:"prefix"`
	Number    string `json:"number"`
}

func (req telephoneReq) input() contact.TelephoneInput {
	return contact.TelephoneInput{Raw: req.Telephone, Prefix: req.Prefix, Number: req.Number}
}

func (h *ContactHandler) AddTelephone(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req telephoneReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.AddTelephone(r.Context(), id, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) ChangeTelephone(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	phoneID, err := pathID(r, "phoneID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	var req telephoneReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	c, err := h.Svc.ChangeTelephone(r.Context(), contactID, phoneID, req.input())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}

func (h *ContactHandler) DeleteTelephone(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathID(r, "contactID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	phoneID, err := pathID(r, "phoneID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.Svc.DeleteTelephone(r.Context(), contactID, phoneID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactDTO(c))
}
