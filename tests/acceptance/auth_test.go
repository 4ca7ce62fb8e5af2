package acceptance

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopportal/accounts-service/internal/dto"
	"github.com/shopportal/accounts-service/internal/handler"
)

func (s *Suite) TestLogin_Success() {
	createReq := dto.CreateUserRequest{
		FullName: "Dana Fox",
		Email:    "login@example.com",
		Password: "Password123",
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer createResp.Body.Close()
	s.Equal(http.StatusCreated, createResp.StatusCode, "User creation should succeed")

	loginReq := dto.LoginRequest{
		Email:    "login@example.com",
		Password: "Password123",
	}
	body, _ = json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var loginResp dto.LoginResponse
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	s.Require().NoError(err)

	s.NotEmpty(loginResp.IDToken)
	s.Require().NotNil(loginResp.User)
	s.Equal("login@example.com", loginResp.User.Email)
	s.Equal("USER", string(loginResp.User.Role))

	cookie := s.findCookie(resp.Cookies(), "sp_auth")
	s.Require().NotNil(cookie, "Should have session cookie")
	s.Equal(43200, cookie.MaxAge)
	s.True(cookie.HttpOnly)
	s.False(cookie.Secure)

	payload := s.decodeSessionCookie(cookie)
	s.Equal(loginResp.IDToken, payload.Token)
	s.Equal("USER", payload.Role)
}

func (s *Suite) TestLogin_WrongPassword() {
	createReq := dto.CreateUserRequest{
		FullName: "Dana Fox",
		Email:    "wrongpass@example.com",
		Password: "CorrectPassword123",
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	createResp.Body.Close()

	loginReq := dto.LoginRequest{
		Email:    "wrongpass@example.com",
		Password: "WrongPassword123",
	}
	body, _ = json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("Unauthorized", errResp.Error)
	s.Equal("invalid email or password", errResp.Message)

	s.Nil(s.findCookie(resp.Cookies(), "sp_auth"), "Failed login must not set a session cookie")
}

func (s *Suite) TestLogin_UnknownEmail() {
	loginReq := dto.LoginRequest{
		Email:    "nonexistent@example.com",
		Password: "Password123",
	}
	body, _ := json.Marshal(loginReq)

	resp, err := http.Post(
		s.BaseURL+"/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var errResp dto.ErrorResponse
	json.NewDecoder(resp.Body).Decode(&errResp)
	s.Equal("invalid email or password", errResp.Message, "Unknown emails must be indistinguishable from wrong passwords")
}

func (s *Suite) TestLogin_MissingPassword() {
	resp, err := http.Post(
		s.BaseURL+"/auth/login",
		"application/json",
		bytes.NewBufferString(`{"email":"someone@example.com"}`),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_RateLimited() {
	loginReq := dto.LoginRequest{
		Email:    "hammer@example.com",
		Password: "Password123",
	}

	var last int
	for i := 0; i < 11; i++ {
		body, _ := json.Marshal(loginReq)
		resp, err := http.Post(s.BaseURL+"/auth/login", "application/json", bytes.NewBuffer(body))
		s.Require().NoError(err)
		last = resp.StatusCode
		resp.Body.Close()
	}

	s.Equal(http.StatusTooManyRequests, last, "Eleventh login attempt within the window should be throttled")
}

func (s *Suite) TestLogout_RevokesSession() {
	cookie, _ := s.createAndLogin("logout@example.com", "Password123")

	req, _ := http.NewRequest("POST", s.BaseURL+"/auth/logout", nil)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.True(successResp.Success)

	cleared := s.findCookie(resp.Cookies(), "sp_auth")
	s.Require().NotNil(cleared, "Logout should clear the session cookie")
	s.Negative(cleared.MaxAge)

	// the revoked session must no longer pass the gate
	meReq, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)
	meReq.AddCookie(cookie)
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()

	s.Equal(http.StatusUnauthorized, meResp.StatusCode)
}

func (s *Suite) TestLogout_WithoutCookie() {
	resp, err := http.Post(s.BaseURL+"/auth/logout", "application/json", nil)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var successResp dto.SuccessResponse
	json.NewDecoder(resp.Body).Decode(&successResp)
	s.True(successResp.Success, "Logout succeeds even without a session")
}

func (s *Suite) TestGetMe_Success() {
	cookie, uid := s.createAndLogin("getme@example.com", "Password123")

	req, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)
	req.AddCookie(cookie)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var profile map[string]any
	err = json.NewDecoder(resp.Body).Decode(&profile)
	s.Require().NoError(err)

	s.Equal(uid, profile["uid"])
	s.Equal("getme@example.com", profile["email"])
	s.Equal("USER", profile["role"])
}

func (s *Suite) TestGetMe_NoCookie() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_GarbageCookie() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "sp_auth", Value: "not-a-session"})

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestResendVerification_Success() {
	createReq := dto.CreateUserRequest{
		FullName: "Dana Fox",
		Email:    "resend@example.com",
		Password: "Password123",
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	createResp.Body.Close()

	resendReq := dto.ResendVerificationRequest{Email: "resend@example.com"}
	body, _ = json.Marshal(resendReq)

	resp, err := http.Post(
		s.BaseURL+"/auth/resend-verification",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var dispatch dto.VerificationDispatch
	err = json.NewDecoder(resp.Body).Decode(&dispatch)
	s.Require().NoError(err)

	// SMTP is unconfigured in tests, so the link is logged instead of sent
	s.True(dispatch.Success)
	s.True(dispatch.Logged)
	s.Contains(dispatch.Link, "/verify-email?token=")
}

func (s *Suite) TestResendVerification_UnknownEmail() {
	resendReq := dto.ResendVerificationRequest{Email: "nobody@example.com"}
	body, _ := json.Marshal(resendReq)

	resp, err := http.Post(
		s.BaseURL+"/auth/resend-verification",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *Suite) TestVerifyEmail_ConsumesToken() {
	createReq := dto.CreateUserRequest{
		FullName: "Dana Fox",
		Email:    "verify@example.com",
		Password: "Password123",
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer createResp.Body.Close()

	var created dto.CreateUserResponse
	err = json.NewDecoder(createResp.Body).Decode(&created)
	s.Require().NoError(err)
	s.Require().NotEmpty(created.Link)

	token := s.tokenFromLink(created.Link)

	resp, err := http.Get(s.BaseURL + "/auth/verify-email?token=" + url.QueryEscape(token))
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var verifyResp dto.VerifyEmailResponse
	err = json.NewDecoder(resp.Body).Decode(&verifyResp)
	s.Require().NoError(err)
	s.True(verifyResp.Success)
	s.Equal("verify@example.com", verifyResp.Email)

	// a consumed token is single use
	again, err := http.Get(s.BaseURL + "/auth/verify-email?token=" + url.QueryEscape(token))
	s.Require().NoError(err)
	defer again.Body.Close()

	s.Equal(http.StatusBadRequest, again.StatusCode)
}

func (s *Suite) TestVerifyEmail_MissingToken() {
	resp, err := http.Get(s.BaseURL + "/auth/verify-email")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestVerifyEmail_UnknownToken() {
	resp, err := http.Get(s.BaseURL + "/auth/verify-email?token=deadbeef")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestCompleteFlow() {
	email := "complete@example.com"
	password := "Password123"

	createReq := dto.CreateUserRequest{
		FullName:    "Dana Fox",
		Email:       email,
		Password:    password,
		PhoneNumber: "+15550100",
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer createResp.Body.Close()
	s.Equal(http.StatusCreated, createResp.StatusCode)

	var created dto.CreateUserResponse
	json.NewDecoder(createResp.Body).Decode(&created)
	s.Require().NotEmpty(created.Link)

	verifyResp, err := http.Get(s.BaseURL + "/auth/verify-email?token=" + url.QueryEscape(s.tokenFromLink(created.Link)))
	s.Require().NoError(err)
	defer verifyResp.Body.Close()
	s.Equal(http.StatusOK, verifyResp.StatusCode)

	body, _ = json.Marshal(dto.LoginRequest{Email: email, Password: password})
	loginResp, err := http.Post(s.BaseURL+"/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer loginResp.Body.Close()
	s.Equal(http.StatusOK, loginResp.StatusCode)

	cookie := s.findCookie(loginResp.Cookies(), "sp_auth")
	s.Require().NotNil(cookie)

	meReq, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)
	meReq.AddCookie(cookie)
	meResp, err := http.DefaultClient.Do(meReq)
	s.Require().NoError(err)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	logoutReq, _ := http.NewRequest("POST", s.BaseURL+"/auth/logout", nil)
	logoutReq.AddCookie(cookie)
	logoutResp, err := http.DefaultClient.Do(logoutReq)
	s.Require().NoError(err)
	defer logoutResp.Body.Close()
	s.Equal(http.StatusOK, logoutResp.StatusCode)

	meReq2, _ := http.NewRequest("GET", s.BaseURL+"/auth/me", nil)
	meReq2.AddCookie(cookie)
	meResp2, err := http.DefaultClient.Do(meReq2)
	s.Require().NoError(err)
	defer meResp2.Body.Close()
	s.Equal(http.StatusUnauthorized, meResp2.StatusCode)
}

// createAndLogin provisions an account and returns the session cookie plus
// the account's uid.
func (s *Suite) createAndLogin(email, password string) (*http.Cookie, string) {
	createReq := dto.CreateUserRequest{
		FullName: "Dana Fox",
		Email:    email,
		Password: password,
	}
	body, _ := json.Marshal(createReq)
	createResp, err := http.Post(s.BaseURL+"/users", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer createResp.Body.Close()
	s.Require().Equal(http.StatusCreated, createResp.StatusCode)

	var created dto.CreateUserResponse
	s.Require().NoError(json.NewDecoder(createResp.Body).Decode(&created))
	s.Require().NotNil(created.User)

	body, _ = json.Marshal(dto.LoginRequest{Email: email, Password: password})
	loginResp, err := http.Post(s.BaseURL+"/auth/login", "application/json", bytes.NewBuffer(body))
	s.Require().NoError(err)
	defer loginResp.Body.Close()
	s.Require().Equal(http.StatusOK, loginResp.StatusCode)

	cookie := s.findCookie(loginResp.Cookies(), "sp_auth")
	s.Require().NotNil(cookie)

	return cookie, created.User.UID
}

func (s *Suite) findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// decodeSessionCookie unwraps the query-escaped base64 JSON cookie value.
func (s *Suite) decodeSessionCookie(cookie *http.Cookie) handler.SessionPayload {
	unescaped, err := url.QueryUnescape(cookie.Value)
	s.Require().NoError(err)

	raw, err := base64.StdEncoding.DecodeString(unescaped)
	s.Require().NoError(err)

	var payload handler.SessionPayload
	s.Require().NoError(json.Unmarshal(raw, &payload))

	return payload
}

func (s *Suite) tokenFromLink(link string) string {
	parsed, err := url.Parse(link)
	s.Require().NoError(err)

	token := parsed.Query().Get("token")
	s.Require().NotEmpty(token)

	return token
}
