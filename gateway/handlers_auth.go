package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/AntonStoeckl/circulation-desk/apiclient"
)

const logMsgLoginFailed = "login failed"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  apiclient.Profile `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: msgInvalidBody})
		return
	}

	var fieldErrors []apiclient.FieldError
	if strings.TrimSpace(req.Email) == "" {
		fieldErrors = append(fieldErrors, apiclient.FieldError{Msg: "email is required", Path: "email"})
	}

	if req.Password == "" {
		fieldErrors = append(fieldErrors, apiclient.FieldError{Msg: "password is required", Path: "password"})
	}

	if len(fieldErrors) > 0 {
		writeFieldErrors(w, fieldErrors)
		return
	}

	account, err := s.directory.AccountByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err == nil {
		err = CheckPassword(account, req.Password)
	}

	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidCredentials) {
			s.logError(r.Context(), logMsgLoginFailed, logAttrError, err.Error())
			writeEnvelope(w, http.StatusInternalServerError, envelope{Message: msgInternalServerError})

			return
		}

		s.logWarn(r.Context(), logMsgLoginFailed, logAttrError, ErrInvalidCredentials.Error())
		writeEnvelope(w, http.StatusBadRequest, envelope{Message: ErrInvalidCredentials.Error()})

		return
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		s.logError(r.Context(), logMsgLoginFailed, logAttrError, err.Error())
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: msgInternalServerError})

		return
	}

	writeData(w, http.StatusOK, msgOK, loginResponse{
		Token: token,
		User: apiclient.Profile{
			ID:    account.ID.String(),
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
	})
}
