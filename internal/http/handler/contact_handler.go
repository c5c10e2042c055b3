package handler

import (
	"fmt"
	"net/http"

	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

type ContactHandler struct {
	contacts service.ContactServiceInterface
}

func NewContactHandler(contacts service.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

type contactRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	in := service.ContactInput{}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Phone != nil {
		in.Phone = *req.Phone
	}
	contact, err := h.contacts.Create(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, r, err, "failed to create contact")
		return
	}
	response.JSON(w, r, http.StatusCreated, "Contact created successfully", contact)
}

func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	list, err := h.contacts.List(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "failed to list contacts")
		return
	}
	if list.Contacts == nil {
		list.Contacts = []service.ContactWithSummary{}
	}
	response.JSON(w, r, http.StatusOK, fmt.Sprintf("Retrieved %d contacts", list.TotalCount), list)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contact")
	if !ok {
		return
	}
	contact, err := h.contacts.Get(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err, "failed to load contact")
		return
	}
	response.JSON(w, r, http.StatusOK, "Contact retrieved successfully", contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contact")
	if !ok {
		return
	}
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	contact, err := h.contacts.Update(r.Context(), uid, id, service.ContactPatch{Name: req.Name, Phone: req.Phone})
	if err != nil {
		writeServiceError(w, r, err, "failed to update contact")
		return
	}
	response.JSON(w, r, http.StatusOK, "Contact updated successfully", contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "contact")
	if !ok {
		return
	}
	deleted, err := h.contacts.Delete(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err, "failed to delete contact")
		return
	}
	response.JSON(w, r, http.StatusOK, "Contact deleted successfully", deleted)
}
