/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"

	"bookfinder/internal/app/directory"
	"bookfinder/internal/app/state"
	"bookfinder/internal/app/user"
	"bookfinder/internal/pkg/auth/jwt"
	"bookfinder/internal/pkg/errs"
	"bookfinder/internal/pkg/logx"
	"bookfinder/internal/pkg/req"
	"bookfinder/internal/pkg/resp"
)

// HandleRegister creates an account and signs it in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input directory.RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Directory.Register(r.Context(), input)
		if err != nil {
			if errs.Is(err, errs.ErrUserAlreadyExists) {
				logx.Warn("registration conflict: email already exists")
			}
			resp.RespondError(w, r, err)
			return
		}

		respondSignedIn(w, r, deps, session)
	}
}

// HandleLogin verifies credentials and signs the account in.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input directory.Credentials
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Directory.Login(r.Context(), input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		respondSignedIn(w, r, deps, session)
	}
}

// HandleLogout clears the current user from the state.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Store.Dispatch(state.Logout())
		resp.RespondSuccess(w, r, nil)
	}
}

// respondSignedIn makes session the current user and answers with a fresh token.
func respondSignedIn(w http.ResponseWriter, r *http.Request, deps *AppDeps, session *user.Session) {
	token, err := jwt.IssueSessionToken(session.ID, session.Email, deps.Config.JWTSecret)
	if err != nil {
		logx.Error(err, "failed to generate token after sign-in", "user_id", session.ID)
		resp.RespondError(w, r, errs.Wrap(errs.ErrUnknown, err))
		return
	}

	deps.Store.Dispatch(state.SetUser(session))

	resp.RespondSuccess(w, r, map[string]any{
		"token": token,
		"user":  session,
	})
}
