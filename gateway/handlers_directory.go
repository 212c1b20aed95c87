package gateway

import (
	"net/http"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
)

const (
	paramPage     = "page"
	paramPageSize = "pageSize"
)

func (s *Server) handleListDocuments(collection string) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, claims Claims) {
		if collection == CollectionUsers && !CanManage(claims.Role) {
			writeAccessDenied(w)
			return
		}

		query := r.URL.Query()

		filters := make(map[string]string)
		for key := range query {
			if key == paramPage || key == paramPageSize {
				continue
			}

			if value := query.Get(key); value != "" {
				filters[key] = value
			}
		}

		page, err := s.directory.List(r.Context(), collection, parsePage(query.Get(paramPage), query.Get(paramPageSize)), filters)
		if err != nil {
			s.storeFailed(w, r, err)
			return
		}

		writeData(w, http.StatusOK, msgOK, page)
	}
}

func (s *Server) handleGetDocument(collection string) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, claims Claims) {
		id := r.PathValue("id")

		if collection == CollectionUsers && !mayActFor(claims, id) {
			writeAccessDenied(w)
			return
		}

		doc, err := s.directory.Get(r.Context(), collection, core.ID(id))
		if err != nil {
			s.storeFailed(w, r, err)
			return
		}

		writeData(w, http.StatusOK, msgOK, doc)
	}
}

func (s *Server) handleCreateDocument(collection string) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, _ Claims) {
		doc, ok := decodeDocument(w, r)
		if !ok {
			return
		}
		delete(doc, "id")

		created, err := s.directory.Create(r.Context(), collection, doc)
		if err != nil {
			s.storeFailed(w, r, err)
			return
		}

		writeData(w, http.StatusCreated, msgCreated, created)
	}
}

func (s *Server) handleUpdateDocument(collection string) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, _ Claims) {
		doc, ok := decodeDocument(w, r)
		if !ok {
			return
		}

		updated, err := s.directory.Update(r.Context(), collection, core.ID(r.PathValue("id")), doc)
		if err != nil {
			s.storeFailed(w, r, err)
			return
		}

		writeData(w, http.StatusOK, msgOK, updated)
	}
}

func (s *Server) handleDeleteDocument(collection string) claimsHandler {
	return func(w http.ResponseWriter, r *http.Request, _ Claims) {
		if err := s.directory.Delete(r.Context(), collection, core.ID(r.PathValue("id"))); err != nil {
			s.storeFailed(w, r, err)
			return
		}

		writeData(w, http.StatusOK, msgDeleted, nil)
	}
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (Document, bool) {
	var doc Document
	if err := decodeBody(r, &doc); err != nil || doc == nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return nil, false
	}

	return doc, true
}
